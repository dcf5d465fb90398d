package model

// ValidPerson 人员登记库中的有效人员（只读，位于第二个库）
type ValidPerson struct {
	NIT string `gorm:"column:F200_NIT"`
}

func (ValidPerson) TableName() string { return "personas_validas" }
