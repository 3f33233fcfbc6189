package domain

import (
	"time"
)

const (
	OprStatusEnabled  = "enabled"
	OprStatusDisabled = "disabled"
)

// SysOpr operator credential record
type SysOpr struct {
	ID        int64     `json:"id,string"`
	Username  string    `gorm:"uniqueIndex;size:128" json:"username"`
	Password  string    `json:"-"`
	Status    string    `gorm:"size:32" json:"status"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (SysOpr) TableName() string {
	return "sys_opr"
}

type SysOprLog struct {
	ID        int64     `json:"id,string"`
	OprName   string    `gorm:"index" json:"opr_name"`
	OprIp     string    `json:"opr_ip"`
	OptAction string    `json:"opt_action"`
	OptDesc   string    `json:"opt_desc"`
	OptTime   time.Time `gorm:"index" json:"opt_time"`
}

// TableName Specify table name
func (SysOprLog) TableName() string {
	return "sys_opr_log"
}
