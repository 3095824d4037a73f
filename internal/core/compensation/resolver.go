package compensation

import (
	"fmt"
	"strings"
)

// SelectionPolicy は同一キーに複数のベンチマークが一致した場合に 1 件を選びます。
// candidates は入力順を保ったまま渡され、空であることはありません。
type SelectionPolicy func(candidates []*Benchmark) *Benchmark

// MostRecentReference は ReferenceDate が最も新しい候補を選びます。同日の場合は先頭が優先されます。
func MostRecentReference(candidates []*Benchmark) *Benchmark {
	var picked *Benchmark
	for _, c := range candidates {
		if picked == nil || c.ReferenceDate.After(picked.ReferenceDate) {
			picked = c
		}
	}
	return picked
}

// FirstMatch は入力順で最初の候補を選びます。
func FirstMatch(candidates []*Benchmark) *Benchmark {
	if len(candidates) == 0 {
		return nil
	}
	return candidates[0]
}

const (
	SelectionMostRecent = "most_recent"
	SelectionFirstMatch = "first_match"
)

// ParseSelectionPolicy は設定値から SelectionPolicy を返します。空文字は most_recent とみなします。
func ParseSelectionPolicy(name string) (SelectionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SelectionMostRecent:
		return MostRecentReference, nil
	case SelectionFirstMatch:
		return FirstMatch, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSelectionPolicy, name)
	}
}

// Resolver は社員の職種に一致するベンチマークを探索します。
type Resolver struct {
	policy SelectionPolicy
}

// NewResolver は Resolver を生成します。policy が nil の場合は MostRecentReference を使います。
func NewResolver(policy SelectionPolicy) *Resolver {
	if policy == nil {
		policy = MostRecentReference
	}
	return &Resolver{policy: policy}
}

var defaultResolver = NewResolver(nil)

// Resolve は既定ポリシーで Resolver.Resolve を呼び出します。
func Resolve(emp *Employee, benchmarks []*Benchmark) *Benchmark {
	return defaultResolver.Resolve(emp, benchmarks)
}

// Resolve は (職種名, 等級) が一致するベンチマークを返します。
// 一致がなければ nil を返します。これはエラーではなく「市場データなし」を意味します。
func (r *Resolver) Resolve(emp *Employee, benchmarks []*Benchmark) *Benchmark {
	if emp == nil {
		return nil
	}

	var candidates []*Benchmark
	for _, b := range benchmarks {
		if b == nil {
			continue
		}
		if sameRole(emp.Role, b.Role) {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	return r.policy(candidates)
}

func sameRole(a, b Role) bool {
	return a.Level == b.Level && strings.EqualFold(strings.TrimSpace(a.Name), strings.TrimSpace(b.Name))
}
