package compensation

import "errors"

var (
	// ErrInvalidEmployee は分析対象の社員データが不正な場合に返却されます。
	ErrInvalidEmployee = errors.New("compensation: invalid employee")
	// ErrInvalidBenchmark はベンチマークのレンジや職種が不正な場合に返却されます。
	ErrInvalidBenchmark = errors.New("compensation: invalid benchmark")
	// ErrInvalidPolicy は分析ポリシーの定数が不正な場合に返却されます。
	ErrInvalidPolicy = errors.New("compensation: invalid policy")
	// ErrUnknownRiskSchema は未知のリスクスキーマ名が指定された場合に返却されます。
	ErrUnknownRiskSchema = errors.New("compensation: unknown risk schema")
	// ErrUnknownSelectionPolicy は未知の選択ポリシー名が指定された場合に返却されます。
	ErrUnknownSelectionPolicy = errors.New("compensation: unknown selection policy")
)
