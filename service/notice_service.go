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

const (
	defaultHighlightLimit = 5
	maxHighlightLimit     = 20
)

type noticePage struct {
	Items []model.Notice `json:"items"`
	Total int64          `json:"total"`
}

// NoticeService manages notices. Saves that touch files run in one
// transaction together with the notice row.
type NoticeService struct {
	db           *sql.DB
	repo         repository.INoticeRepository
	categoryRepo repository.ICategoryRepository
	memberRepo   repository.IMemberRepository
	files        *FileService
	cache        *listCache
}

func NewNoticeService(db *sql.DB, repo repository.INoticeRepository, categoryRepo repository.ICategoryRepository, memberRepo repository.IMemberRepository,
	files *FileService, cache ICacheClient, ttl time.Duration) *NoticeService {
	return &NoticeService{
		db:           db,
		repo:         repo,
		categoryRepo: categoryRepo,
		memberRepo:   memberRepo,
		files:        files,
		cache:        newListCache(cache, "notices", ttl),
	}
}

// AdminList searches every notice, published or not.
func (s *NoticeService) AdminList(ctx context.Context, search model.NoticeSearch, page common.PageRequest) ([]model.Notice, int64, error) {
	search.ExposableOnly = false
	return s.search(ctx, search, page)
}

// PublicList returns exposable notices only. Results are cached.
func (s *NoticeService) PublicList(ctx context.Context, search model.NoticeSearch, page common.PageRequest) ([]model.Notice, int64, error) {
	search.ExposableOnly = true
	search.IsPublished = nil

	key := s.cache.key(ctx, "list", searchKey(search), page.Page, page.Size)
	var cached noticePage
	if s.cache.get(ctx, key, &cached) {
		return cached.Items, cached.Total, nil
	}

	notices, total, err := s.search(ctx, search, page)
	if err != nil {
		return nil, 0, err
	}
	s.cache.set(ctx, key, noticePage{Items: notices, Total: total})
	return notices, total, nil
}

func (s *NoticeService) search(ctx context.Context, search model.NoticeSearch, page common.PageRequest) ([]model.Notice, int64, error) {
	if search.SearchType == "" {
		search.SearchType = model.SearchAll
	}
	if !search.SearchType.IsValid() {
		return nil, 0, common.ErrInvalidSearchType
	}
	if search.Now.IsZero() {
		search.Now = common.Now()
	}
	if search.Keyword != "" && (search.SearchType == model.SearchAuthor || search.SearchType == model.SearchAll) {
		ids, err := s.memberRepo.FindIDsByNameLike(ctx, search.Keyword)
		if err != nil {
			return nil, 0, err
		}
		search.AuthorIDs = ids
	}

	notices, total, err := s.repo.Search(ctx, search, page)
	if err != nil {
		return nil, 0, err
	}
	if err := s.decorate(ctx, notices, search.Now); err != nil {
		return nil, 0, err
	}
	return notices, total, nil
}

// decorate fills list-only fields: file counts, author names and exposure.
// Content is dropped from list rows.
func (s *NoticeService) decorate(ctx context.Context, notices []model.Notice, now time.Time) error {
	if len(notices) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(notices))
	authors := make([]*int64, 0, len(notices)*2)
	for i := range notices {
		ids = append(ids, notices[i].ID)
		authors = append(authors, notices[i].CreatedBy, notices[i].UpdatedBy)
	}
	counts, err := s.files.CountLinked(ctx, model.OwnerNotices, ids)
	if err != nil {
		return err
	}
	names := authorNames(ctx, s.memberRepo, collectIDs(authors...))

	for i := range notices {
		n := &notices[i]
		n.Content = ""
		n.Exposable = n.IsExposable(now)
		n.AttachmentCount = counts[n.ID][model.FileRoleAttachment]
		n.InlineImageCount = counts[n.ID][model.FileRoleInline]
		n.CreatedByName = nameOf(names, n.CreatedBy)
		n.UpdatedByName = nameOf(names, n.UpdatedBy)
	}
	return nil
}

func (s *NoticeService) find(ctx context.Context, id int64) (*model.Notice, error) {
	notice, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNoticeNotFound
		}
		return nil, err
	}
	return notice, nil
}

// Get loads a notice with its files and neighbours. Public reads hide
// notices that are not exposable and count a view.
func (s *NoticeService) Get(ctx context.Context, id int64, public bool) (*model.NoticeDetail, error) {
	notice, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	now := common.Now()
	notice.Exposable = notice.IsExposable(now)
	if public {
		if !notice.Exposable {
			return nil, common.ErrNoticeNotFound
		}
		if err := s.repo.IncrementViewCount(ctx, id); err != nil {
			return nil, err
		}
		notice.ViewCount++
	}

	detail := &model.NoticeDetail{Notice: *notice}
	if detail.Attachments, err = s.files.ListLinked(ctx, model.OwnerNotices, id, model.FileRoleAttachment); err != nil {
		return nil, err
	}
	if detail.InlineImages, err = s.files.ListLinked(ctx, model.OwnerNotices, id, model.FileRoleInline); err != nil {
		return nil, err
	}
	detail.AttachmentCount = int64(len(detail.Attachments))
	detail.InlineImageCount = int64(len(detail.InlineImages))
	if detail.Previous, err = s.repo.Previous(ctx, notice, public, now); err != nil {
		return nil, err
	}
	if detail.Next, err = s.repo.Next(ctx, notice, public, now); err != nil {
		return nil, err
	}

	names := authorNames(ctx, s.memberRepo, collectIDs(notice.CreatedBy, notice.UpdatedBy))
	detail.CreatedByName = nameOf(names, notice.CreatedBy)
	detail.UpdatedByName = nameOf(names, notice.UpdatedBy)
	return detail, nil
}

func (s *NoticeService) checkCategory(ctx context.Context, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := s.categoryRepo.GetByID(ctx, *id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrCategoryNotFound
		}
		return err
	}
	return nil
}

// applyExposure normalizes the exposure window. ALWAYS notices carry no
// window; PERIOD windows must not end before they start.
func applyExposure(n *model.Notice, exposureType model.ExposureType, start, end *time.Time) error {
	if exposureType == "" {
		exposureType = model.ExposureAlways
	}
	n.ExposureType = exposureType
	if exposureType == model.ExposureAlways {
		n.ExposureStartAt, n.ExposureEndAt = nil, nil
		return nil
	}
	n.ExposureStartAt = utcSeconds(start)
	n.ExposureEndAt = utcSeconds(end)
	if n.ExposureStartAt != nil && n.ExposureEndAt != nil && n.ExposureStartAt.After(*n.ExposureEndAt) {
		return common.ErrInvalidDateRange
	}
	return nil
}

func utcSeconds(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC().Truncate(time.Second)
	return &v
}

func (s *NoticeService) Create(ctx context.Context, req model.NoticeCreateRequest, actorID int64) (*model.Notice, error) {
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	notice := &model.Notice{
		Title:       req.Title,
		Content:     req.Content,
		IsImportant: req.IsImportant,
		IsPublished: req.IsPublished == nil || *req.IsPublished,
		CategoryID:  req.CategoryID,
		CreatedBy:   &actorID,
		UpdatedBy:   &actorID,
	}
	if err := applyExposure(notice, req.ExposureType, req.ExposureStartAt, req.ExposureEndAt); err != nil {
		return nil, err
	}
	err := s.files.InTx(ctx, s.db, func(tx *sql.Tx, files *FileLinker) error {
		if err := s.repo.Create(ctx, tx, notice); err != nil {
			return err
		}
		promoted, err := linkNotice(ctx, files, notice.ID, req.Attachments, req.InlineImages, actorID)
		if err != nil {
			return err
		}
		return s.rewriteContent(ctx, tx, notice, promoted)
	})
	if err != nil {
		return nil, err
	}

	s.cache.invalidate(ctx)
	logger.Log.WithFields(logrus.Fields{"notice_id": notice.ID, "actor_id": actorID}).Info("Notice created")
	return notice, nil
}

func linkNotice(ctx context.Context, files *FileLinker, id int64, attachments, inline []model.FileReference, actorID int64) (map[string]int64, error) {
	promoted, err := files.LinkFiles(ctx, model.OwnerNotices, id, model.FileRoleAttachment, attachments, &actorID)
	if err != nil {
		return nil, err
	}
	images, err := files.LinkFiles(ctx, model.OwnerNotices, id, model.FileRoleInline, inline, &actorID)
	if err != nil {
		return nil, err
	}
	for k, v := range images {
		promoted[k] = v
	}
	return promoted, nil
}

func (s *NoticeService) rewriteContent(ctx context.Context, tx *sql.Tx, notice *model.Notice, promoted map[string]int64) error {
	if len(promoted) == 0 {
		return nil
	}
	content := RewriteTempURLs(notice.Content, promoted)
	if content == notice.Content {
		return nil
	}
	notice.Content = content
	return s.repo.UpdateContent(ctx, tx, notice.ID, content)
}

func (s *NoticeService) Update(ctx context.Context, id int64, req model.NoticeUpdateRequest, actorID int64) (*model.Notice, error) {
	notice, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	notice.Title = req.Title
	notice.Content = RemoveImageURLs(req.Content, req.DeleteInlineImageIDs)
	notice.IsImportant = req.IsImportant
	if req.IsPublished != nil {
		notice.IsPublished = *req.IsPublished
	}
	notice.CategoryID = req.CategoryID
	notice.UpdatedBy = &actorID
	if err := applyExposure(notice, req.ExposureType, req.ExposureStartAt, req.ExposureEndAt); err != nil {
		return nil, err
	}

	err = s.files.InTx(ctx, s.db, func(tx *sql.Tx, files *FileLinker) error {
		if _, err := files.UnlinkFiles(ctx, model.OwnerNotices, id, model.FileRoleAttachment, req.DeleteAttachmentIDs); err != nil {
			return err
		}
		if _, err := files.UnlinkFiles(ctx, model.OwnerNotices, id, model.FileRoleInline, req.DeleteInlineImageIDs); err != nil {
			return err
		}
		promoted, err := linkNotice(ctx, files, id, req.NewAttachments, req.NewInlineImages, actorID)
		if err != nil {
			return err
		}
		notice.Content = RewriteTempURLs(notice.Content, promoted)
		return s.repo.Update(ctx, tx, notice)
	})
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx)
	logger.Log.WithFields(logrus.Fields{"notice_id": id, "actor_id": actorID}).Info("Notice updated")
	return notice, nil
}

func (s *NoticeService) Delete(ctx context.Context, id int64) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	err := s.files.InTx(ctx, s.db, func(tx *sql.Tx, files *FileLinker) error {
		if err := files.UnlinkAll(ctx, model.OwnerNotices, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.cache.invalidate(ctx)
	logger.Log.WithField("notice_id", id).Info("Notice deleted")
	return nil
}

func (s *NoticeService) ToggleImportant(ctx context.Context, id int64, actorID int64) (*model.Notice, error) {
	notice, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	notice.IsImportant = !notice.IsImportant
	if err := s.repo.UpdateImportant(ctx, id, notice.IsImportant, &actorID); err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx)
	return notice, nil
}

// UpdatePublished sets the published flag. Publishing a notice whose period
// already ended makes it permanent, as does an explicit request.
func (s *NoticeService) UpdatePublished(ctx context.Context, id int64, req model.NoticePublishRequest, actorID int64) (*model.Notice, error) {
	notice, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	now := common.Now()
	notice.IsPublished = req.IsPublished
	if req.MakePermanent || (req.IsPublished && notice.PeriodEnded(now)) {
		notice.MakePermanent()
	}
	notice.UpdatedBy = &actorID
	if err := s.repo.Update(ctx, nil, notice); err != nil {
		return nil, err
	}
	notice.Exposable = notice.IsExposable(now)
	s.cache.invalidate(ctx)
	return notice, nil
}

// Important lists exposable important notices, newest first.
func (s *NoticeService) Important(ctx context.Context, limit int) ([]model.Notice, error) {
	important := true
	return s.highlight(ctx, "important", model.NoticeSearch{IsImportant: &important}, limit)
}

// Recent lists the newest exposable notices.
func (s *NoticeService) Recent(ctx context.Context, limit int) ([]model.Notice, error) {
	return s.highlight(ctx, "recent", model.NoticeSearch{}, limit)
}

func (s *NoticeService) highlight(ctx context.Context, name string, search model.NoticeSearch, limit int) ([]model.Notice, error) {
	if limit <= 0 {
		limit = defaultHighlightLimit
	}
	if limit > maxHighlightLimit {
		limit = maxHighlightLimit
	}

	key := s.cache.key(ctx, name, limit)
	var cached []model.Notice
	if s.cache.get(ctx, key, &cached) {
		return cached, nil
	}

	search.ExposableOnly = true
	search.Sort = model.SortCreatedDesc
	notices, _, err := s.search(ctx, search, common.PageRequest{Page: 0, Size: limit})
	if err != nil {
		return nil, err
	}
	s.cache.set(ctx, key, notices)
	return notices, nil
}

func (s *NoticeService) StatsByCategory(ctx context.Context) ([]model.CategoryStat, error) {
	return s.repo.StatsByCategory(ctx)
}

// searchKey renders every filter of a search as JSON. Derived fields are
// cleared first so equal requests share one key.
func searchKey(search model.NoticeSearch) string {
	search.Now = time.Time{}
	search.AuthorIDs = nil
	if search.SearchType == "" {
		search.SearchType = model.SearchAll
	}
	return filterKey(search)
}
