package social

import (
	"gorm.io/gorm"

	types "github.com/yungbote/tweetarchive/internal/domain"
	"github.com/yungbote/tweetarchive/internal/platform/dbctx"
	"github.com/yungbote/tweetarchive/internal/platform/logger"
)

type UserRepo interface {
	// GetOrCreate stores a stub; an existing row is returned unchanged.
	GetOrCreate(dbc dbctx.Context, row *types.User) (*types.User, bool, error)
	// Upsert stores the row or enriches the existing one with every
	// non-blank field of row.
	Upsert(dbc dbctx.Context, row *types.User) (*types.User, error)
	GetByID(dbc dbctx.Context, id int64) (*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

var userStub = Keyed[types.User]{
	Op:       "user.get_or_create",
	Conflict: []string{"id"},
	Key:      func(u *types.User) map[string]any { return map[string]any{"id": u.ID} },
}

var userEnrich = Keyed[types.User]{
	Op:       "user.upsert",
	Conflict: []string{"id"},
	Key:      func(u *types.User) map[string]any { return map[string]any{"id": u.ID} },
	Merge:    userUpdates,
}

func (r *userRepo) GetOrCreate(dbc dbctx.Context, row *types.User) (*types.User, bool, error) {
	if row == nil || row.ID == 0 {
		return nil, false, nil
	}
	return GetOrCreate(dbc, r.db, userStub, row)
}

func (r *userRepo) Upsert(dbc dbctx.Context, row *types.User) (*types.User, error) {
	if row == nil || row.ID == 0 {
		return nil, nil
	}
	out, _, err := GetOrCreate(dbc, r.db, userEnrich, row)
	return out, err
}

func (r *userRepo) GetByID(dbc dbctx.Context, id int64) (*types.User, error) {
	if id == 0 {
		return nil, nil
	}
	var rows []types.User
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// userUpdates lists the incoming fields that are present and differ from
// the stored row. Blank strings and nil counters never overwrite.
func userUpdates(existing, in *types.User) map[string]any {
	up := map[string]any{}
	setString := func(col, cur, next string) {
		if next != "" && next != cur {
			up[col] = next
		}
	}
	setInt := func(col string, cur, next *int) {
		if next != nil && (cur == nil || *cur != *next) {
			up[col] = *next
		}
	}
	setString("screen_name", existing.ScreenName, in.ScreenName)
	setString("name", existing.Name, in.Name)
	setString("description", existing.Description, in.Description)
	setString("url", existing.URL, in.URL)
	setString("location", existing.Location, in.Location)
	setInt("followers", existing.Followers, in.Followers)
	setInt("following", existing.Following, in.Following)
	setInt("listed", existing.Listed, in.Listed)
	setInt("statuses_count", existing.StatusesCount, in.StatusesCount)
	if in.JoinedAt != nil && (existing.JoinedAt == nil || !existing.JoinedAt.Equal(*in.JoinedAt)) {
		up["joined_at"] = in.JoinedAt.UTC()
	}
	return up
}
