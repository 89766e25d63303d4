package model

import "time"

// User 表示系统用户。
//
// Password 为空表示仅通过第三方登录（Google）创建的账号，没有本地密码。
type User struct {
	ID        uint      `gorm:"primaryKey"`                    // 用户 ID
	Name      string    `gorm:"type:varchar(191)"`             // 显示名
	Email     string    `gorm:"type:varchar(191);uniqueIndex"` // 邮箱（唯一）
	Password  string    // bcrypt 哈希，联合登录账号为空
	CreatedAt time.Time // 创建时间

	Tasks []Task `gorm:"foreignKey:UserID"`
}
