// service/main_test.go
package service

import (
	"academy-api/common"
	"academy-api/config"
	"academy-api/logger"
	"academy-api/model"
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// TestMain runs setup before any tests in this package are executed.
func TestMain(m *testing.M) {
	logger.Init("error")
	config.AppConfig.JWT.SecretKey = "service-test-secret-key-0123456789"
	config.AppConfig.JWT.AccessExpireMinutes = 15
	config.AppConfig.JWT.RefreshExpireDays = 14
	passwordCost = bcrypt.MinCost

	os.Exit(m.Run())
}

// MockMemberRepository is a mock for IMemberRepository.
type MockMemberRepository struct{ mock.Mock }

func (m *MockMemberRepository) Create(ctx context.Context, member *model.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MockMemberRepository) GetByUsername(ctx context.Context, username string) (*model.Member, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MockMemberRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMemberRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedBy *int64) error {
	args := m.Called(ctx, id, passwordHash, updatedBy)
	return args.Error(0)
}

func (m *MockMemberRepository) UpdateStatus(ctx context.Context, member *model.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) UpdateLocked(ctx context.Context, id int64, locked bool, updatedBy *int64) error {
	args := m.Called(ctx, id, locked, updatedBy)
	return args.Error(0)
}

func (m *MockMemberRepository) UpdateRole(ctx context.Context, id int64, role model.MemberRole, updatedBy *int64) error {
	args := m.Called(ctx, id, role, updatedBy)
	return args.Error(0)
}

func (m *MockMemberRepository) NamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]string), args.Error(1)
}

// Unused methods needed to satisfy the interface
func (m *MockMemberRepository) Search(context.Context, model.MemberSearch, common.PageRequest) ([]model.Member, int64, error) {
	return nil, 0, nil
}
func (m *MockMemberRepository) FindIDsByNameLike(context.Context, string) ([]int64, error) {
	return nil, nil
}

// MockTokenRepository is a mock for ITokenRepository.
type MockTokenRepository struct{ mock.Mock }

func (m *MockTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshToken), args.Error(1)
}

func (m *MockTokenRepository) Revoke(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockTokenRepository) RevokeAllByMemberID(ctx context.Context, memberID int64) error {
	args := m.Called(ctx, memberID)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockFileRepository is a mock for IFileRepository.
type MockFileRepository struct{ mock.Mock }

func (m *MockFileRepository) Create(ctx context.Context, tx *sql.Tx, file *model.UploadFile) error {
	args := m.Called(ctx, tx, file)
	return args.Error(0)
}

func (m *MockFileRepository) GetByID(ctx context.Context, tx *sql.Tx, id int64) (*model.UploadFile, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadFile), args.Error(1)
}

func (m *MockFileRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFileRepository) CreateLink(ctx context.Context, tx *sql.Tx, link *model.UploadFileLink) error {
	args := m.Called(ctx, tx, link)
	return args.Error(0)
}

func (m *MockFileRepository) DeleteLinks(ctx context.Context, tx *sql.Tx, ownerTable string, ownerID int64, role *model.FileRole, fileIDs []int64) (int64, error) {
	args := m.Called(ctx, tx, ownerTable, ownerID, role, fileIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFileRepository) DeleteLinksByFile(ctx context.Context, fileID int64) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

func (m *MockFileRepository) ListLinked(ctx context.Context, ownerTable string, ownerID int64, role *model.FileRole) ([]model.LinkedFile, error) {
	args := m.Called(ctx, ownerTable, ownerID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LinkedFile), args.Error(1)
}

func (m *MockFileRepository) CountLinked(ctx context.Context, ownerTable string, ownerIDs []int64) (map[int64]model.FileCounts, error) {
	args := m.Called(ctx, ownerTable, ownerIDs)
	return args.Get(0).(map[int64]model.FileCounts), args.Error(1)
}

// MockApplyRepository is a mock for IApplyRepository.
type MockApplyRepository struct{ mock.Mock }

func (m *MockApplyRepository) Create(ctx context.Context, tx *sql.Tx, app *model.ApplyApplication) error {
	args := m.Called(ctx, tx, app)
	return args.Error(0)
}

func (m *MockApplyRepository) Update(ctx context.Context, tx *sql.Tx, app *model.ApplyApplication) error {
	args := m.Called(ctx, tx, app)
	return args.Error(0)
}

func (m *MockApplyRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.ApplicationStatus, updatedBy *int64) error {
	args := m.Called(ctx, tx, id, status, updatedBy)
	return args.Error(0)
}

func (m *MockApplyRepository) UpdateAssignee(ctx context.Context, tx *sql.Tx, id int64, assigneeName string, updatedBy *int64) error {
	args := m.Called(ctx, tx, id, assigneeName, updatedBy)
	return args.Error(0)
}

func (m *MockApplyRepository) ReplaceSubjects(ctx context.Context, tx *sql.Tx, id int64, subjects []model.SubjectCode) error {
	args := m.Called(ctx, tx, id, subjects)
	return args.Error(0)
}

func (m *MockApplyRepository) AddLog(ctx context.Context, tx *sql.Tx, log *model.ApplyApplicationLog) error {
	args := m.Called(ctx, tx, log)
	return args.Error(0)
}

func (m *MockApplyRepository) GetByID(ctx context.Context, id int64) (*model.ApplyApplication, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ApplyApplication), args.Error(1)
}

func (m *MockApplyRepository) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockApplyRepository) FindByPhoneSince(ctx context.Context, phone string, since time.Time) ([]model.ApplyApplication, error) {
	args := m.Called(ctx, phone, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ApplyApplication), args.Error(1)
}

func (m *MockApplyRepository) FindDelayed(ctx context.Context, before time.Time) ([]model.ApplyApplication, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ApplyApplication), args.Error(1)
}

func (m *MockApplyRepository) FindByAssignee(ctx context.Context, assigneeName string) ([]model.ApplyApplication, error) {
	args := m.Called(ctx, assigneeName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ApplyApplication), args.Error(1)
}

func (m *MockApplyRepository) CountByStatus(ctx context.Context) (map[model.ApplicationStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[model.ApplicationStatus]int64), args.Error(1)
}

func (m *MockApplyRepository) CountByDivision(ctx context.Context) (map[model.Division]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[model.Division]int64), args.Error(1)
}

// Unused methods needed to satisfy the interface
func (m *MockApplyRepository) Search(context.Context, model.ApplySearch, *common.PageRequest) ([]model.ApplyApplication, int64, error) {
	return nil, 0, nil
}
func (m *MockApplyRepository) ListSubjects(context.Context, []int64) (map[int64][]model.SubjectCode, error) {
	return nil, nil
}
func (m *MockApplyRepository) ListLogs(context.Context, int64) ([]model.ApplyApplicationLog, error) {
	return nil, nil
}
func (m *MockApplyRepository) Previous(context.Context, *model.ApplyApplication) (*model.ApplyNav, error) {
	return nil, nil
}
func (m *MockApplyRepository) Next(context.Context, *model.ApplyApplication) (*model.ApplyNav, error) {
	return nil, nil
}

// MockCategoryGroupRepository is a mock for ICategoryGroupRepository.
type MockCategoryGroupRepository struct{ mock.Mock }

func (m *MockCategoryGroupRepository) List(ctx context.Context) ([]model.CategoryGroup, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.CategoryGroup), args.Error(1)
}

func (m *MockCategoryGroupRepository) GetByID(ctx context.Context, id int64) (*model.CategoryGroup, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CategoryGroup), args.Error(1)
}

func (m *MockCategoryGroupRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryGroupRepository) Create(ctx context.Context, group *model.CategoryGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockCategoryGroupRepository) Update(ctx context.Context, group *model.CategoryGroup) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockCategoryGroupRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCategoryRepository is a mock for ICategoryRepository.
type MockCategoryRepository struct{ mock.Mock }

func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryRepository) CountByGroup(ctx context.Context, groupID int64) (int64, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCategoryRepository) ExistsBySlug(ctx context.Context, groupID int64, slug string, excludeID int64) (bool, error) {
	args := m.Called(ctx, groupID, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) MaxSortOrder(ctx context.Context, groupID int64) (int, error) {
	args := m.Called(ctx, groupID)
	return args.Int(0), args.Error(1)
}

func (m *MockCategoryRepository) CountReferences(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *model.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

// Unused methods needed to satisfy the interface
func (m *MockCategoryRepository) ListAll(context.Context) ([]model.Category, error) { return nil, nil }
func (m *MockCategoryRepository) ListByGroup(context.Context, int64) ([]model.Category, error) {
	return nil, nil
}

// MockAdminHistoryRepository is a mock for IAdminHistoryRepository.
type MockAdminHistoryRepository struct{ mock.Mock }

func (m *MockAdminHistoryRepository) CreateLogin(ctx context.Context, h *model.AdminLoginHistory) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockAdminHistoryRepository) SearchLogins(ctx context.Context, search model.AdminLoginSearch, page common.PageRequest) ([]model.AdminLoginHistory, int64, error) {
	args := m.Called(ctx, search, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.AdminLoginHistory), args.Get(1).(int64), args.Error(2)
}

func (m *MockAdminHistoryRepository) CreateAction(ctx context.Context, l *model.AdminActionLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockAdminHistoryRepository) SearchActions(ctx context.Context, search model.AdminActionSearch, page common.PageRequest) ([]model.AdminActionLog, int64, error) {
	args := m.Called(ctx, search, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.AdminActionLog), args.Get(1).(int64), args.Error(2)
}

func (m *MockAdminHistoryRepository) GetAction(ctx context.Context, id int64) (*model.AdminActionLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdminActionLog), args.Error(1)
}

// MockQnaRepository is a mock for IQnaRepository.
type MockQnaRepository struct{ mock.Mock }

func (m *MockQnaRepository) Search(ctx context.Context, search model.QnaSearch, page common.PageRequest) ([]model.QnaQuestion, int64, error) {
	args := m.Called(ctx, search, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.QnaQuestion), args.Get(1).(int64), args.Error(2)
}

func (m *MockQnaRepository) GetByID(ctx context.Context, tx *sql.Tx, id int64) (*model.QnaQuestion, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// hand out a copy so callers cannot change the stored fixture
	q := *args.Get(0).(*model.QnaQuestion)
	return &q, args.Error(1)
}

func (m *MockQnaRepository) Create(ctx context.Context, q *model.QnaQuestion) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQnaRepository) Update(ctx context.Context, q *model.QnaQuestion) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQnaRepository) UpdateFlags(ctx context.Context, id int64, pinned, published *bool) error {
	args := m.Called(ctx, id, pinned, published)
	return args.Error(0)
}

func (m *MockQnaRepository) IncrementViewCount(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQnaRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQnaRepository) SetAnswered(ctx context.Context, tx *sql.Tx, id int64, answeredAt *time.Time) error {
	args := m.Called(ctx, tx, id, answeredAt)
	return args.Error(0)
}

func (m *MockQnaRepository) Previous(ctx context.Context, q *model.QnaQuestion, publishedOnly bool) (*model.QnaNav, error) {
	args := m.Called(ctx, q, publishedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QnaNav), args.Error(1)
}

func (m *MockQnaRepository) Next(ctx context.Context, q *model.QnaQuestion, publishedOnly bool) (*model.QnaNav, error) {
	args := m.Called(ctx, q, publishedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QnaNav), args.Error(1)
}

func (m *MockQnaRepository) Statistics(ctx context.Context) (*model.QnaStatistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QnaStatistics), args.Error(1)
}

func (m *MockQnaRepository) GetAnswer(ctx context.Context, tx *sql.Tx, questionID int64) (*model.QnaAnswer, error) {
	args := m.Called(ctx, tx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QnaAnswer), args.Error(1)
}

func (m *MockQnaRepository) CreateAnswer(ctx context.Context, tx *sql.Tx, a *model.QnaAnswer) error {
	args := m.Called(ctx, tx, a)
	return args.Error(0)
}

func (m *MockQnaRepository) UpdateAnswer(ctx context.Context, tx *sql.Tx, a *model.QnaAnswer) error {
	args := m.Called(ctx, tx, a)
	return args.Error(0)
}

func (m *MockQnaRepository) DeleteAnswer(ctx context.Context, tx *sql.Tx, questionID int64) (int64, error) {
	args := m.Called(ctx, tx, questionID)
	return args.Get(0).(int64), args.Error(1)
}
