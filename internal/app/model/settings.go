package model

// SettingsID is the primary key of the singleton settings row.
const SettingsID = 1

// Settings is the singleton notification configuration row. It is created
// with all toggles off at startup and updated wholesale by the admin API.
type Settings struct {
	ID             int  `db:"id" gorm:"primaryKey" json:"-"`
	NotifyOnCreate bool `db:"notify_on_create" gorm:"not null;default:false" json:"tg_notify_create"`
	NotifyOnLogin  bool `db:"notify_on_login" gorm:"not null;default:false" json:"tg_notify_login"`
	NotifyOnUpdate bool `db:"notify_on_update" gorm:"not null;default:false" json:"tg_notify_update"`
}
