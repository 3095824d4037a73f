package analysis

import "errors"

var (
	// ErrInvalidEmployeeID は社員 ID が指定されていない場合に返却されます。
	ErrInvalidEmployeeID = errors.New("analysis: invalid employee id")
	// ErrNoBenchmark は比較可能なベンチマークが無く保存できない場合に返却されます。
	ErrNoBenchmark = errors.New("analysis: no benchmark for employee role")
	// ErrValueOutOfRange は分析結果の数値が保存可能な範囲を超えた場合に返却されます。
	ErrValueOutOfRange = errors.New("analysis: value out of storable range")
	// ErrInvalidPageSize は一覧取得時のページサイズが不正な場合に返却されます。
	ErrInvalidPageSize = errors.New("analysis: invalid page size")
	// ErrInvalidPageToken は一覧取得時のページトークンが不正な場合に返却されます。
	ErrInvalidPageToken = errors.New("analysis: invalid page token")
)
