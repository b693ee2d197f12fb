package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"exam-express/internal/cache"
	"exam-express/internal/domain"
	"exam-express/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// AnswerKeyService serves the current answer key and stores new versions.
type AnswerKeyService interface {
	// GetCurrent returns the latest stored key, or the built-in default when none was stored.
	GetCurrent(ctx context.Context) (domain.AnswerKey, error)
	// Save replaces the current key wholesale with the parsed document. A document
	// without pdfUrl keeps the PDF linked to the current key.
	Save(ctx context.Context, raw []byte) (domain.AnswerKey, error)
	Layout(ctx context.Context) (domain.ExamLayout, error)
	// SetPDFURL stores a new key version that differs from the current one only in its PDF URL.
	SetPDFURL(ctx context.Context, url string) (domain.AnswerKey, error)
}

type answerKeyServiceImpl struct {
	repo  domain.AnswerKeyRepository
	cache domain.Cache
	ttl   time.Duration
	group singleflight.Group
	// generation is bumped every time a new key version is stored
	generation atomic.Uint64
}

// NewAnswerKeyService creates a new instance of AnswerKeyService.
func NewAnswerKeyService(repo domain.AnswerKeyRepository, c domain.Cache, ttl time.Duration) AnswerKeyService {
	return &answerKeyServiceImpl{repo: repo, cache: c, ttl: ttl}
}

func (s *answerKeyServiceImpl) GetCurrent(ctx context.Context) (domain.AnswerKey, error) {
	appLogger := logger.Get()
	cacheKey := cache.CurrentAnswerKey()

	cached, err := s.cache.Get(ctx, cacheKey)
	switch {
	case err == nil:
		key, parseErr := domain.ParseAnswerKey([]byte(cached))
		if parseErr == nil {
			return *key, nil
		}
		appLogger.Warn("Discarding unparsable cached answer key", zap.String("cacheKey", cacheKey), zap.Error(parseErr))
		s.invalidate(ctx)
	case errors.Is(err, domain.ErrCacheMiss):
	default:
		appLogger.Warn("Answer key cache read failed", zap.String("cacheKey", cacheKey), zap.Error(err))
	}

	// concurrent misses share one repository read; a save starts a new flight
	gen := s.generation.Load()
	res, err, _ := s.group.Do(fmt.Sprintf("%s#%d", cacheKey, gen), func() (interface{}, error) {
		stored, err := s.repo.GetLatest(ctx)
		if err != nil {
			return nil, domain.NewInternalError("failed to load answer key", err)
		}
		key := domain.DefaultAnswerKey()
		if stored != nil {
			key = *stored
		}
		// a key read before a concurrent save must not outlive that save in the cache
		if s.generation.Load() != gen {
			appLogger.Debug("Answer key replaced during load, not caching", zap.Uint64("generation", gen))
			return key, nil
		}
		s.store(ctx, key)
		if s.generation.Load() != gen {
			s.invalidate(ctx)
		}
		return key, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	// callers sharing a result must not share its maps
	return res.(domain.AnswerKey).Clone(), nil
}

func (s *answerKeyServiceImpl) Save(ctx context.Context, raw []byte) (domain.AnswerKey, error) {
	key, err := domain.ParseAnswerKey(raw)
	if err != nil {
		return domain.AnswerKey{}, err
	}
	if key.PDFURL == "" {
		current, err := s.repo.GetLatest(ctx)
		if err != nil {
			return domain.AnswerKey{}, domain.NewInternalError("failed to load answer key", err)
		}
		if current != nil {
			key.PDFURL = current.PDFURL
		}
	}
	return s.persist(ctx, key)
}

func (s *answerKeyServiceImpl) persist(ctx context.Context, key *domain.AnswerKey) (domain.AnswerKey, error) {
	version, err := s.repo.Save(ctx, key)
	if err != nil {
		if domain.IsErrorCode(err, domain.CodeConflict) {
			return domain.AnswerKey{}, err
		}
		return domain.AnswerKey{}, domain.NewInternalError("failed to save answer key", err)
	}
	s.generation.Add(1)
	s.invalidate(ctx)
	logger.Get().Info("Answer key saved",
		zap.Int("version", version),
		zap.Int("questions", key.QuestionCount()),
		zap.String("writingMode", string(key.Writing.Mode)))
	return *key, nil
}

func (s *answerKeyServiceImpl) Layout(ctx context.Context) (domain.ExamLayout, error) {
	key, err := s.GetCurrent(ctx)
	if err != nil {
		return domain.ExamLayout{}, err
	}
	return domain.NewExamLayout(key), nil
}

func (s *answerKeyServiceImpl) SetPDFURL(ctx context.Context, url string) (domain.AnswerKey, error) {
	current, err := s.GetCurrent(ctx)
	if err != nil {
		return domain.AnswerKey{}, err
	}
	next := current.Clone()
	next.PDFURL = url
	return s.persist(ctx, &next)
}

func (s *answerKeyServiceImpl) store(ctx context.Context, key domain.AnswerKey) {
	data, err := json.Marshal(key)
	if err != nil {
		logger.Get().Warn("Failed to encode answer key for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, cache.CurrentAnswerKey(), string(data), s.ttl); err != nil {
		logger.Get().Warn("Failed to cache answer key", zap.Error(err))
	}
}

func (s *answerKeyServiceImpl) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, cache.CurrentAnswerKey()); err != nil {
		logger.Get().Warn("Failed to invalidate cached answer key", zap.Error(err))
	}
}
