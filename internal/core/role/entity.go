package role

import (
	"time"

	"github.com/ogurasousui/talent-guard/internal/core/compensation"
)

// Role は職種カタログに登録された職種と等級の組です。
// 社員とベンチマークはここに登録された組のみを参照できます。
type Role struct {
	ID        string
	Name      string
	Level     compensation.Level
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key は分析時に使われる職種の値を返します。
func (r *Role) Key() compensation.Role {
	return compensation.Role{Name: r.Name, Level: r.Level}
}
