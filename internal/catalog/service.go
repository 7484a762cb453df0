package catalog

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Clark-Hu/movie-reviews/internal/domain"
	"github.com/Clark-Hu/movie-reviews/internal/repository"
)

// ErrImportDisabled is returned by ImportMovie when no metadata source is configured.
var ErrImportDisabled = errors.New("movie import is not configured")

// MetadataSource resolves an external catalog id into the fields of a new movie.
type MetadataSource interface {
	MovieDetails(ctx context.Context, externalID int64) (domain.MovieCreate, error)
}

// ErrorReporter receives internal errors the service absorbs instead of returning.
type ErrorReporter interface {
	Report(ctx context.Context, err error)
}

// Options configures a Service.
type Options struct {
	Logger   *log.Logger
	Reporter ErrorReporter
	Metadata MetadataSource
}

// Service is the catalog core: validated mutations, rating aggregation, movie
// queries and relationship resolution over a Repository.
//
// Every mutation runs under one writer lock, which serialises the read-check-write
// sequences (uniqueness checks, rating recomputation). Reads take no lock; each
// record they observe comes from a single store call.
type Service struct {
	repo     *repository.Repository
	logger   *log.Logger
	reporter ErrorReporter
	metadata MetadataSource
	validate *validator.Validate

	mu sync.Mutex
}

// New wires a Service around repo.
func New(repo *repository.Repository, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		repo:     repo,
		logger:   logger,
		reporter: opts.Reporter,
		metadata: opts.Metadata,
		validate: newValidator(),
	}
}

// absorb logs an internal error and forwards it to the reporter. It never fails.
func (s *Service) absorb(ctx context.Context, err error) {
	s.logger.Printf("catalog: internal error absorbed: %v", err)
	if s.reporter != nil {
		s.reporter.Report(ctx, err)
	}
}
