package docscmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragdesk/cmd/ragdesk/session"
	"github.com/papercomputeco/ragdesk/pkg/cliui"
	"github.com/papercomputeco/ragdesk/pkg/config"
	"github.com/papercomputeco/ragdesk/pkg/workspace"
)

const uploadLongDesc string = `Upload files to the workspace for indexing.

Files are uploaded concurrently with --workers uploads in flight. Uploads share
one session, so an expired access token is refreshed and each failed upload
retried once. Set client.single_flight_refresh to share a single refresh
between them.

Examples:
  ragdesk docs upload handbook.pdf
  ragdesk docs upload notes/*.md --workers 8`

type uploadCommander struct {
	workers uint
}

func newUploadCmd() *cobra.Command {
	cmder := &uploadCommander{}

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload and index files",
		Long:  uploadLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	config.AddClientFlags(cmd)
	config.AddUintFlag(cmd, config.ClientFlags, config.FlagUploadWorkers, &cmder.workers)

	return cmd
}

// timedUploader bounds each upload by client.request_timeout.
type timedUploader struct {
	s *session.Session
}

func (t timedUploader) UploadDocument(ctx context.Context, name string, data []byte) (*workspace.Document, error) {
	ctx, cancel := t.s.RequestContext(ctx)
	defer cancel()
	return t.s.Service.UploadDocument(ctx, name, data)
}

func (c *uploadCommander) run(cmd *cobra.Command, paths []string) error {
	jobs, err := readJobs(paths)
	if err != nil {
		return err
	}

	s, err := session.Open(cmd, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	if !s.Store.Get().Authenticated() {
		return workspace.ErrNotLoggedIn
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w)

	var results []workspace.UploadResult
	err = cliui.Step(w, fmt.Sprintf("Uploading %d file(s) with %d worker(s)", len(jobs), s.Config.Client.UploadWorkers), func() error {
		results, err = upload(cmd.Context(), s, jobs)
		return err
	})
	if err != nil {
		return err
	}

	return report(w, results)
}

func upload(ctx context.Context, s *session.Session, jobs []workspace.UploadJob) ([]workspace.UploadResult, error) {
	uploader, err := workspace.NewUploader(ctx, &workspace.UploaderConfig{
		Documents:  timedUploader{s: s},
		NumWorkers: s.Config.Client.UploadWorkers,
		QueueSize:  uint(len(jobs)),
		Logger:     s.Logger,
	})
	if err != nil {
		return nil, err
	}

	for _, job := range jobs {
		if !uploader.Enqueue(job) {
			s.Logger.Warn("upload queue full, skipping file", "name", job.Name)
		}
	}

	return uploader.Close(), nil
}

func readJobs(paths []string) ([]workspace.UploadJob, error) {
	jobs := make([]workspace.UploadJob, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}

		jobs = append(jobs, workspace.UploadJob{Name: filepath.Base(p), Data: data})
	}
	return jobs, nil
}

func report(w io.Writer, results []workspace.UploadResult) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "  %s %s  %s\n", cliui.FailMark, cliui.NameStyle.Render(r.Name), cliui.ErrorStyle.Render(r.Err.Error()))
			continue
		}
		fmt.Fprintf(w, "  %s %s  %s\n", cliui.SuccessMark, cliui.NameStyle.Render(r.Name),
			cliui.DimStyle.Render(fmt.Sprintf("id %d", r.Document.ID)))
	}
	fmt.Fprintln(w)

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(results))
	}
	return nil
}
