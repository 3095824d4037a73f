package role

import "errors"

var (
	// ErrRoleNotFound は職種が存在しない場合に返却されます。
	ErrRoleNotFound = errors.New("role: not found")
	// ErrRoleAlreadyExists は同じ職種名・等級が既に登録されている場合に返却されます。
	ErrRoleAlreadyExists = errors.New("role: already exists")
	// ErrRoleInUse は社員またはベンチマークが参照している職種を削除・変更しようとした場合に返却されます。
	ErrRoleInUse = errors.New("role: referenced by employees or benchmarks")
	// ErrInvalidRole は職種名または等級が不正な場合に返却されます。
	ErrInvalidRole = errors.New("role: invalid role")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("role: invalid id")
	// ErrInvalidPageSize は一覧取得時のページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("role: invalid page size")
	// ErrInvalidPageToken は一覧取得時のページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("role: invalid page token")
)
