package service

import (
	"academy-api/common"
	"academy-api/logger"
	"academy-api/model"
	"academy-api/repository"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

type faqPage struct {
	Items []model.Faq `json:"items"`
	Total int64       `json:"total"`
}

type FaqService struct {
	repo         repository.IFaqRepository
	categoryRepo repository.ICategoryRepository
	memberRepo   repository.IMemberRepository
	cache        *listCache
}

func NewFaqService(repo repository.IFaqRepository, categoryRepo repository.ICategoryRepository, memberRepo repository.IMemberRepository,
	cache ICacheClient, ttl time.Duration) *FaqService {
	return &FaqService{
		repo:         repo,
		categoryRepo: categoryRepo,
		memberRepo:   memberRepo,
		cache:        newListCache(cache, "faqs", ttl),
	}
}

func (s *FaqService) AdminList(ctx context.Context, search model.FaqSearch, page common.PageRequest) ([]model.Faq, int64, error) {
	faqs, total, err := s.repo.Search(ctx, search, page)
	if err != nil {
		return nil, 0, err
	}
	s.withAuthors(ctx, faqs)
	return faqs, total, nil
}

// PublicList returns published FAQs. Results are cached.
func (s *FaqService) PublicList(ctx context.Context, search model.FaqSearch, page common.PageRequest) ([]model.Faq, int64, error) {
	published := true
	search.IsPublished = &published

	key := s.cache.key(ctx, "list", filterKey(search), page.Page, page.Size)
	var cached faqPage
	if s.cache.get(ctx, key, &cached) {
		return cached.Items, cached.Total, nil
	}

	faqs, total, err := s.repo.Search(ctx, search, page)
	if err != nil {
		return nil, 0, err
	}
	s.cache.set(ctx, key, faqPage{Items: faqs, Total: total})
	return faqs, total, nil
}

func (s *FaqService) withAuthors(ctx context.Context, faqs []model.Faq) {
	ptrs := make([]*int64, 0, len(faqs)*2)
	for i := range faqs {
		ptrs = append(ptrs, faqs[i].CreatedBy, faqs[i].UpdatedBy)
	}
	if len(ptrs) == 0 {
		return
	}
	names := authorNames(ctx, s.memberRepo, collectIDs(ptrs...))
	for i := range faqs {
		faqs[i].CreatedByName = nameOf(names, faqs[i].CreatedBy)
		faqs[i].UpdatedByName = nameOf(names, faqs[i].UpdatedBy)
	}
}

func (s *FaqService) Get(ctx context.Context, id int64) (*model.Faq, error) {
	faq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrFaqNotFound
		}
		return nil, err
	}
	list := []model.Faq{*faq}
	s.withAuthors(ctx, list)
	return &list[0], nil
}

func (s *FaqService) category(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *FaqService) Create(ctx context.Context, req model.FaqRequest, actorID int64) (*model.Faq, error) {
	category, err := s.category(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	faq := &model.Faq{
		CategoryID:   category.ID,
		CategoryName: category.Name,
		Title:        req.Title,
		Content:      req.Content,
		IsPublished:  req.IsPublished == nil || *req.IsPublished,
		CreatedBy:    &actorID,
		UpdatedBy:    &actorID,
	}
	if err := s.repo.Create(ctx, faq); err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx)
	logger.Log.WithFields(logrus.Fields{"faq_id": faq.ID, "actor_id": actorID}).Info("FAQ created")
	return faq, nil
}

func (s *FaqService) Update(ctx context.Context, id int64, req model.FaqRequest, actorID int64) (*model.Faq, error) {
	faq, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	category, err := s.category(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	faq.CategoryID = category.ID
	faq.CategoryName = category.Name
	faq.Title = req.Title
	faq.Content = req.Content
	if req.IsPublished != nil {
		faq.IsPublished = *req.IsPublished
	}
	faq.UpdatedBy = &actorID

	if err := s.repo.Update(ctx, faq); err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx)
	return faq, nil
}

func (s *FaqService) SetPublished(ctx context.Context, id int64, published bool, actorID int64) (*model.Faq, error) {
	faq, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePublished(ctx, id, published, &actorID); err != nil {
		return nil, err
	}
	faq.IsPublished = published
	s.cache.invalidate(ctx)
	return faq, nil
}

func (s *FaqService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.invalidate(ctx)
	logger.Log.WithField("faq_id", id).Info("FAQ deleted")
	return nil
}

func (s *FaqService) StatsByCategory(ctx context.Context) ([]model.CategoryStat, error) {
	return s.repo.StatsByCategory(ctx)
}
