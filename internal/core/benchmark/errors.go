package benchmark

import "errors"

var (
	// ErrBenchmarkNotFound はベンチマークが存在しない場合に返却されます。
	ErrBenchmarkNotFound = errors.New("benchmark not found")
	// ErrBenchmarkAlreadyExists は同一職種・等級・基準日のベンチマークが既に存在する場合に返却されます。
	ErrBenchmarkAlreadyExists = errors.New("benchmark already exists")
	// ErrBenchmarkInUse は分析履歴から参照されているベンチマークを削除しようとした場合に返却されます。
	ErrBenchmarkInUse = errors.New("benchmark is referenced by saved analyses")
	// ErrInvalidRange は給与レンジが不正な場合に返却されます。
	ErrInvalidRange = errors.New("invalid salary range")
	// ErrInvalidRole は職種または等級が不正な場合に返却されます。
	ErrInvalidRole = errors.New("invalid role")
	// ErrUnknownRole は職種カタログに登録されていない職種が指定された場合に返却されます。
	ErrUnknownRole = errors.New("role is not registered")
	// ErrInvalidReferenceDate は基準日が指定されていない場合に返却されます。
	ErrInvalidReferenceDate = errors.New("invalid reference date")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidPageSize は一覧取得時のページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("invalid page size")
	// ErrInvalidPageToken は一覧取得時のページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("invalid page token")
)
