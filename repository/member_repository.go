package repository

import (
	"academy-api/common"
	"academy-api/db"
	"academy-api/logger"
	"academy-api/model"
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
)

// IMemberRepository defines the contract for member database operations.
// Lookups of a single row return sql.ErrNoRows when nothing matches.
type IMemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	GetByID(ctx context.Context, id int64) (*model.Member, error)
	GetByUsername(ctx context.Context, username string) (*model.Member, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedBy *int64) error
	UpdateStatus(ctx context.Context, member *model.Member) error
	UpdateLocked(ctx context.Context, id int64, locked bool, updatedBy *int64) error
	UpdateRole(ctx context.Context, id int64, role model.MemberRole, updatedBy *int64) error
	Search(ctx context.Context, search model.MemberSearch, page common.PageRequest) ([]model.Member, int64, error)
	FindIDsByNameLike(ctx context.Context, keyword string) ([]int64, error)
	NamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error)
}

// MemberRepository implements IMemberRepository.
type MemberRepository struct {
	baseRepository
}

func NewMemberRepository(conn *sql.DB, dialect db.Dialect) *MemberRepository {
	return &MemberRepository{baseRepository: newBase(conn, dialect)}
}

var memberColumns = []string{
	"id", "username", "password_hash", "member_name", "phone_number", "email_address",
	"is_email_verified", "is_phone_verified", "role", "status", "locked", "memo",
	"last_login_at", "password_changed_at", "suspended_at",
	"created_by", "updated_by", "created_at", "updated_at",
}

func scanMember(row rowScanner) (*model.Member, error) {
	var (
		m                                     model.Member
		email, memo                           sql.NullString
		lastLogin, passwordChanged, suspended sql.NullTime
		createdBy, updatedBy                  sql.NullInt64
		role, status                          string
	)
	err := row.Scan(&m.ID, &m.Username, &m.PasswordHash, &m.MemberName, &m.PhoneNumber, &email,
		&m.EmailVerified, &m.PhoneVerified, &role, &status, &m.Locked, &memo,
		&lastLogin, &passwordChanged, &suspended,
		&createdBy, &updatedBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Role = model.MemberRole(role)
	m.Status = model.MemberStatus(status)
	m.EmailAddress = stringPtr(email)
	m.Memo = stringPtr(memo)
	m.LastLoginAt = timePtr(lastLogin)
	m.PasswordChangedAt = timePtr(passwordChanged)
	m.SuspendedAt = timePtr(suspended)
	m.CreatedBy = int64Ptr(createdBy)
	m.UpdatedBy = int64Ptr(updatedBy)
	return &m, nil
}

func (r *MemberRepository) Create(ctx context.Context, member *model.Member) error {
	log := logger.Log.WithFields(logrus.Fields{
		"username": member.Username,
		"role":     member.Role,
	})
	log.Info("Executing query to create a new member")

	now := common.Now()
	member.CreatedAt, member.UpdatedAt = now, now
	member.PasswordChangedAt = &now

	ib := r.sb().Insert("members").
		Columns("username", "password_hash", "member_name", "phone_number", "email_address",
			"is_email_verified", "is_phone_verified", "role", "status", "locked",
			"password_changed_at", "created_at", "updated_at").
		Values(member.Username, member.PasswordHash, member.MemberName, member.PhoneNumber, nullable(member.EmailAddress),
			member.EmailVerified, member.PhoneVerified, string(member.Role), string(member.Status), member.Locked,
			now, now, now)

	id, err := r.insert(ctx, r.DB, ib)
	if err != nil {
		log.WithError(err).Error("Failed to execute create member query")
		return err
	}
	member.ID = id
	return nil
}

func (r *MemberRepository) getOne(ctx context.Context, where sq.Sqlizer) (*model.Member, error) {
	row, err := r.queryRow(ctx, r.sb().Select(memberColumns...).From("members").Where(where))
	if err != nil {
		return nil, err
	}
	return scanMember(row)
}

func (r *MemberRepository) GetByID(ctx context.Context, id int64) (*model.Member, error) {
	log := logger.Log.WithField("member_id", id)
	log.Info("Executing query to get member by id")

	m, err := r.getOne(ctx, sq.Eq{"id": id})
	if err != nil && err != sql.ErrNoRows {
		log.WithError(err).Error("Failed to execute get member by id query")
	}
	return m, err
}

func (r *MemberRepository) GetByUsername(ctx context.Context, username string) (*model.Member, error) {
	log := logger.Log.WithField("username", username)
	log.Info("Executing query to get member by username")

	m, err := r.getOne(ctx, sq.Eq{"username": username})
	if err != nil && err != sql.ErrNoRows {
		log.WithError(err).Error("Failed to execute get member by username query")
	}
	return m, err
}

func (r *MemberRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, r.sb().Select("COUNT(*)").From("members").Where(sq.Eq{"username": username}))
}

func (r *MemberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, r.sb().Select("COUNT(*)").From("members").Where(sq.Eq{"email_address": email}))
}

func (r *MemberRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	now := common.Now()
	_, err := r.exec(ctx, r.DB, r.sb().Update("members").
		Set("last_login_at", now).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}))
	if err != nil {
		logger.Log.WithError(err).WithField("member_id", id).Error("Failed to update last login")
	}
	return err
}

func (r *MemberRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedBy *int64) error {
	log := logger.Log.WithField("member_id", id)
	log.Info("Executing query to update member password")

	now := common.Now()
	_, err := r.exec(ctx, r.DB, r.sb().Update("members").
		Set("password_hash", passwordHash).
		Set("password_changed_at", now).
		Set("updated_by", nullable(updatedBy)).
		Set("updated_at", now).
		Where(sq.Eq{"id": id}))
	if err != nil {
		log.WithError(err).Error("Failed to execute update password query")
	}
	return err
}

// UpdateStatus persists status, suspended_at and memo of member.
func (r *MemberRepository) UpdateStatus(ctx context.Context, member *model.Member) error {
	log := logger.Log.WithFields(logrus.Fields{
		"member_id": member.ID,
		"status":    member.Status,
	})
	log.Info("Executing query to update member status")

	now := common.Now()
	member.UpdatedAt = now
	_, err := r.exec(ctx, r.DB, r.sb().Update("members").
		Set("status", string(member.Status)).
		Set("suspended_at", nullable(member.SuspendedAt)).
		Set("memo", nullable(member.Memo)).
		Set("updated_by", nullable(member.UpdatedBy)).
		Set("updated_at", now).
		Where(sq.Eq{"id": member.ID}))
	if err != nil {
		log.WithError(err).Error("Failed to execute update member status query")
	}
	return err
}

func (r *MemberRepository) UpdateLocked(ctx context.Context, id int64, locked bool, updatedBy *int64) error {
	_, err := r.exec(ctx, r.DB, r.sb().Update("members").
		Set("locked", locked).
		Set("updated_by", nullable(updatedBy)).
		Set("updated_at", common.Now()).
		Where(sq.Eq{"id": id}))
	if err != nil {
		logger.Log.WithError(err).WithField("member_id", id).Error("Failed to update member lock")
	}
	return err
}

func (r *MemberRepository) UpdateRole(ctx context.Context, id int64, role model.MemberRole, updatedBy *int64) error {
	_, err := r.exec(ctx, r.DB, r.sb().Update("members").
		Set("role", string(role)).
		Set("updated_by", nullable(updatedBy)).
		Set("updated_at", common.Now()).
		Where(sq.Eq{"id": id}))
	if err != nil {
		logger.Log.WithError(err).WithField("member_id", id).Error("Failed to update member role")
	}
	return err
}

func (r *MemberRepository) Search(ctx context.Context, search model.MemberSearch, page common.PageRequest) ([]model.Member, int64, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"keyword": search.Keyword,
		"page":    page.Page,
		"size":    page.Size,
	})
	log.Info("Executing query to search members")

	where := sq.And{}
	if search.Keyword != "" {
		where = append(where, sq.Or{r.like("username", search.Keyword), r.like("member_name", search.Keyword)})
	}
	if search.Role != nil {
		where = append(where, sq.Eq{"role": string(*search.Role)})
	}
	if search.Status != nil {
		where = append(where, sq.Eq{"status": string(*search.Status)})
	}

	total, err := r.count(ctx, r.sb().Select("COUNT(*)").From("members").Where(where))
	if err != nil {
		log.WithError(err).Error("Failed to count members")
		return nil, 0, err
	}

	rows, err := r.query(ctx, r.sb().Select(memberColumns...).From("members").Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(page.Limit()).Offset(page.Offset()))
	if err != nil {
		log.WithError(err).Error("Failed to execute search members query")
		return nil, 0, err
	}
	defer rows.Close()

	members := make([]model.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, err
		}
		members = append(members, *m)
	}
	return members, total, rows.Err()
}

func (r *MemberRepository) FindIDsByNameLike(ctx context.Context, keyword string) ([]int64, error) {
	rows, err := r.query(ctx, r.sb().Select("id").From("members").Where(r.like("member_name", keyword)))
	if err != nil {
		logger.Log.WithError(err).WithField("keyword", keyword).Error("Failed to find members by name")
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// NamesByIDs maps member ids to member names. Unknown ids are absent.
func (r *MemberRepository) NamesByIDs(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := r.query(ctx, r.sb().Select("id", "member_name").From("members").Where(sq.Eq{"id": ids}))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to load member names")
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}
