package related

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/klass-lk/postgateway/internal/errorlib"
	"github.com/klass-lk/postgateway/internal/model"
	"github.com/klass-lk/postgateway/internal/storage"
)

const (
	defaultSubtitle  = "Exploring the Challenges and Opportunities"
	defaultTopic     = "Diversity & Inclusion"
	defaultAuthor    = "John Doe"
	defaultReadTime  = 10
	coverImageName   = "custom-related-cover.png"
	largeImageWarnAt = 1 << 20

	timestampLayout = "2006-01-02T15:04:05.000Z"
)

var imageSubtypePattern = regexp.MustCompile(`data:image/(\w+);base64`)

type RelatedPostWriter interface {
	Create(ctx context.Context, post model.Post) (model.Post, error)
}

type Service struct {
	store        RelatedPostWriter
	files        storage.FileService
	validate     *validator.Validate
	templatePath string
	log          *slog.Logger
	now          func() time.Time
	readFile     func(name string) ([]byte, error)
}

// NewService wires the pipeline. files may be nil when object storage is not configured;
// inline images are then rejected with an upload failure.
func NewService(store RelatedPostWriter, files storage.FileService, templatePath string, log *slog.Logger) *Service {
	return &Service{
		store:        store,
		files:        files,
		validate:     newValidator(),
		templatePath: templatePath,
		log:          log,
		now:          time.Now,
		readFile:     os.ReadFile,
	}
}

func (s *Service) CreateRelated(ctx context.Context, input model.CreateRelatedPostInput) (model.PostDetail, error) {
	input = input.Normalize()
	if err := s.validate.Struct(input); err != nil {
		return model.PostDetail{}, validationError(err)
	}

	body, err := s.readFile(s.templatePath)
	if err != nil {
		s.log.Error("Failed to read post template", slog.String("path", s.templatePath), slog.String("error", err.Error()))
		return model.PostDetail{}, errorlib.ErrTemplateUnavailable.Wrap(err)
	}

	now := s.now().UTC()
	id := now.UnixMilli()

	coverURL, err := s.resolveCoverURL(ctx, input.CoverImageURL, id)
	if err != nil {
		return model.PostDetail{}, err
	}

	timestamp := now.Format(timestampLayout)
	subtitle := defaultSubtitle
	post := model.Post{
		ID: id,
		Attributes: model.PostAttributes{
			Title:       input.Title,
			Subtitle:    &subtitle,
			Topic:       defaultTopic,
			Author:      defaultAuthor,
			ReadTime:    defaultReadTime,
			Body:        string(body),
			CreatedAt:   timestamp,
			UpdatedAt:   timestamp,
			PublishedAt: timestamp,
			CoverImg: model.CoverImg{Data: &model.CoverImgData{
				ID:         id,
				Attributes: model.CoverImgAttributes{Name: coverImageName, URL: coverURL},
			}},
		},
	}

	s.log.Info("Saving related post",
		slog.Int64("id", id),
		slog.Int("image_url_length", len(coverURL)),
		slog.Int("body_length", len(body)),
		slog.Bool("is_data_url", strings.HasPrefix(input.CoverImageURL, "data:image/")),
		slog.Bool("is_storage_url", coverURL != input.CoverImageURL))

	created, err := s.store.Create(ctx, post)
	if err != nil {
		s.log.Error("Failed to save related post", slog.Int64("id", id), slog.String("error", err.Error()))
		return model.PostDetail{}, err
	}
	return model.NewPostDetail(created), nil
}

func (s *Service) resolveCoverURL(ctx context.Context, coverImageURL string, id int64) (string, error) {
	if !strings.HasPrefix(coverImageURL, "data:image/") {
		return coverImageURL, nil
	}

	s.log.Info("Received inline cover image", slog.Int("data_url_length", len(coverImageURL)))
	if len(coverImageURL) > largeImageWarnAt {
		s.log.Warn("Inline cover image exceeds 1 MiB", slog.Int("data_url_length", len(coverImageURL)))
	}

	if s.files == nil {
		return "", errorlib.ErrImageUploadFailed.WithDetail("object storage is not configured")
	}

	fileName := fmt.Sprintf("cover-%d.%s", id, imageSubtype(coverImageURL))
	url, err := s.files.UploadInlineImage(ctx, coverImageURL, fileName)
	if err == nil {
		s.log.Info("Uploaded cover image", slog.String("file", fileName), slog.String("url", url))
		return url, nil
	}

	s.log.Error("Failed to upload cover image", slog.String("file", fileName), slog.String("error", err.Error()))
	switch {
	case errorlib.Is(err, errorlib.ErrStorageBucketMissing):
		apiErr, _ := errorlib.As(err)
		return "", errorlib.ErrImageUploadFailed.WithDetail(apiErr.Message).Wrap(err)
	default:
		return "", errorlib.ErrImageUploadFailed.Wrap(err)
	}
}

func imageSubtype(dataURL string) string {
	if m := imageSubtypePattern.FindStringSubmatch(dataURL); m != nil {
		return m[1]
	}
	return "png"
}
