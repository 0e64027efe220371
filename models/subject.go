package models

type Subject struct {
	ID   uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"not null;size:200;uniqueIndex" validate:"required,max=200"`
}

func (Subject) TableName() string {
	return "subjects"
}
