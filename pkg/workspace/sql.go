package workspace

import (
	"context"

	"github.com/papercomputeco/ragdesk/pkg/client"
)

// GenerateSQL translates a natural language question into SQL. With
// req.Execute set the server also runs the statement and returns its rows.
func (s *Service) GenerateSQL(ctx context.Context, req SQLRequest) (*SQLResult, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}

	question, err := requirePrompt(req.Question)
	if err != nil {
		return nil, err
	}
	req.Question = question

	result := &SQLResult{}
	if err := s.api.Do(ctx, client.Request{Path: "/sql/query", Body: req}, result); err != nil {
		return nil, err
	}
	return result, nil
}
