package workspace

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/papercomputeco/ragdesk/pkg/client"
	"github.com/papercomputeco/ragdesk/pkg/sse"
)

// ScoreResume grades a resume file against a job description.
func (s *Service) ScoreResume(ctx context.Context, name string, data []byte, jobDescription string) (*ResumeScore, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}

	jd, err := requirePrompt(jobDescription)
	if err != nil {
		return nil, err
	}

	name = filepath.Base(name)
	score := &ResumeScore{}
	err = s.api.Upload(ctx, client.Upload{
		Path:   "/resume/score",
		Fields: map[string]string{"job_description": jd},
		Files: []client.File{{
			Field:       "file",
			Name:        name,
			ContentType: contentTypeFor(name),
			Data:        data,
		}},
	}, score)
	if err != nil {
		return nil, err
	}
	return score, nil
}

// GenerateResume streams a resume drafted from req.Profile for
// req.JobDescription and returns the full text.
func (s *Service) GenerateResume(ctx context.Context, req ResumeRequest, onToken TokenFunc) (string, error) {
	if err := s.requireSession(); err != nil {
		return "", err
	}

	jd, err := requirePrompt(req.JobDescription)
	if err != nil {
		return "", err
	}
	req.JobDescription = jd

	var text strings.Builder
	err = s.api.Stream(ctx, client.Request{Path: "/resume/generate/stream", Body: req}, func(ev sse.Event) error {
		switch ev.Name {
		case EventToken:
			token, err := tokenText(ev)
			if err != nil {
				return err
			}
			text.WriteString(token)
			if onToken != nil {
				onToken(token)
			}
		case EventError:
			return streamError(ev)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return text.String(), nil
}
