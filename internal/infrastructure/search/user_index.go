package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/fitness-app-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// UserIndex mirrors user profiles into an Elasticsearch index for admin search.
type UserIndex struct {
	ES     *elasticsearch.Client
	Name   string
	Logger *logrus.Logger
}

func NewUserIndex(es *elasticsearch.Client, name string, logger *logrus.Logger) *UserIndex {
	return &UserIndex{ES: es, Name: name, Logger: logger}
}

// Document is the indexed shape of a user. Password hashes never leave postgres.
func Document(u *entity.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"avatar_url": u.AvatarURL,
		"roles":      u.RoleStrings(),
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (i *UserIndex) Index(ctx context.Context, u *entity.User) error {
	b, err := json.Marshal(Document(u))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: i.Name, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, i.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

// SearchQuery builds a multi_match query over email and name.
func SearchQuery(q string, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
}

func (i *UserIndex) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	b, err := json.Marshal(SearchQuery(q, size))
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := i.ES.Search(i.ES.Search.WithContext(c), i.ES.Search.WithIndex(i.Name), i.ES.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		if i.Logger != nil {
			i.Logger.WithField("status", res.Status()).Warn("es search response error")
		}
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
