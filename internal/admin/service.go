package admin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"skyeserver/internal/blob"
	"skyeserver/internal/client"
	"skyeserver/internal/media"
)

// ValidationError is a problem with the operator's input. Nothing has been
// uploaded when it is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type API interface {
	ListContent(ctx context.Context) ([]client.ContentItem, error)
	GetContent(ctx context.Context, id string) (*client.ContentItem, error)
	CreateContent(ctx context.Context, req client.CreateContentRequest) (*client.ContentItem, error)
	DeleteContent(ctx context.Context, id string) error
	RequestUploadTarget(ctx context.Context) (*client.UploadTarget, error)
	Analytics(ctx context.Context) (*client.Analytics, error)
}

type Uploader interface {
	UploadFile(ctx context.Context, target *blob.UploadTarget, path, fileName, contentType string, progress blob.ProgressFunc) (*blob.UploadedFile, error)
}

type Prober interface {
	Extract(ctx context.Context, path string) (*media.Metadata, error)
}

type Thumbnailer interface {
	IsAvailable() bool
	Generate(ctx context.Context, videoPath string, duration time.Duration) (string, error)
}

// Progress receives upload progress for one stored object.
type Progress func(name string, fraction float64)

type AddRequest struct {
	Title       string
	Description string
	Category    string
	Featured    bool
	Thumbnail   string
	Files       []string
}

// Service drives the admin operations against the content API. Uploads
// always finish before the catalog record is created.
type Service struct {
	api      API
	uploader Uploader
	prober   Prober
	thumbs   Thumbnailer
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(api API, uploader Uploader, prober Prober, thumbs Thumbnailer, logger zerolog.Logger) *Service {
	return &Service{
		api:      api,
		uploader: uploader,
		prober:   prober,
		thumbs:   thumbs,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]client.ContentItem, error) {
	return s.api.ListContent(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*client.ContentItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &ValidationError{Message: "Content ID is required."}
	}
	return s.api.GetContent(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Message: "Content ID is required."}
	}
	return s.api.DeleteContent(ctx, id)
}

func (s *Service) Stats(ctx context.Context) (*client.Analytics, error) {
	return s.api.Analytics(ctx)
}

// PartTitles names the records created for n files.
func PartTitles(title string, n int) []string {
	titles := make([]string, n)
	for i := range titles {
		if n == 1 {
			titles[i] = title
		} else {
			titles[i] = fmt.Sprintf("%s - Part %d", title, i+1)
		}
	}
	return titles
}

func (s *Service) validate(req AddRequest) error {
	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.Category) == "" {
		missing = append(missing, "category")
	}
	if len(req.Files) == 0 {
		missing = append(missing, "at least one video file")
	}
	if len(missing) > 0 {
		return &ValidationError{Message: "Please provide " + strings.Join(missing, ", ") + "."}
	}

	for _, path := range req.Files {
		info, err := os.Stat(path)
		if err != nil {
			return &ValidationError{Message: fmt.Sprintf("Cannot read %s: %v", path, err)}
		}
		if info.IsDir() {
			return &ValidationError{Message: path + " is a directory."}
		}
		if !media.IsSupportedVideo(path) {
			return &ValidationError{Message: filepath.Base(path) + " is not a supported video file."}
		}
	}
	return nil
}

// Add uploads every file and creates one record per file. Files are
// processed in order; the first failure stops the run and the records
// already created are returned with the error.
func (s *Service) Add(ctx context.Context, req AddRequest, progress Progress) ([]client.ContentItem, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	titles := PartTitles(strings.TrimSpace(req.Title), len(req.Files))
	var created []client.ContentItem
	for i, path := range req.Files {
		item, err := s.addOne(ctx, req, titles[i], path, progress)
		if err != nil {
			return created, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		created = append(created, *item)
	}
	return created, nil
}

func (s *Service) addOne(ctx context.Context, req AddRequest, title, path string, progress Progress) (*client.ContentItem, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var duration time.Duration
	if s.prober != nil {
		if meta, err := s.prober.Extract(ctx, path); err != nil {
			s.logger.Warn().Err(err).Str("file", path).Msg("could not probe video")
		} else {
			duration = meta.Duration
		}
	}

	fileName := fmt.Sprintf("%d-%s", s.now().UnixMilli(), filepath.Base(path))
	thumbName := ""

	// The video and its thumbnail go up together. Either failing cancels
	// the other and no record is created.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.upload(gctx, path, fileName, progress)
	})
	if req.Thumbnail == "" && s.thumbs != nil && s.thumbs.IsAvailable() {
		thumbName = media.ThumbnailName(fileName)
		g.Go(func() error {
			thumbPath, err := s.thumbs.Generate(gctx, path, duration)
			if err != nil {
				return fmt.Errorf("generate thumbnail: %w", err)
			}
			defer os.Remove(thumbPath)
			return s.upload(gctx, thumbPath, thumbName, progress)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	item, err := s.api.CreateContent(ctx, client.CreateContentRequest{
		Title:             title,
		Description:       req.Description,
		Category:          strings.TrimSpace(req.Category),
		Featured:          req.Featured,
		Thumbnail:         req.Thumbnail,
		ThumbnailFileName: thumbName,
		FileName:          fileName,
		FileSize:          info.Size(),
		Source:            "File",
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("id", item.ID).
		Str("title", item.Title).
		Str("file", fileName).
		Int64("size", info.Size()).
		Msg("content added")
	return item, nil
}

// upload requests a fresh one-time target and sends path to it.
func (s *Service) upload(ctx context.Context, path, fileName string, progress Progress) error {
	target, err := s.api.RequestUploadTarget(ctx)
	if err != nil {
		return err
	}
	if target.UploadURL == "" {
		return errors.New("upload target has no URL")
	}

	var fn blob.ProgressFunc
	if progress != nil {
		fn = func(fraction float64) { progress(fileName, fraction) }
	}
	_, err = s.uploader.UploadFile(ctx, &blob.UploadTarget{
		UploadURL:          target.UploadURL,
		AuthorizationToken: target.AuthorizationToken,
	}, path, fileName, media.GetContentType(path), fn)
	if err != nil {
		return fmt.Errorf("upload %s: %w", fileName, err)
	}
	return nil
}
