package models

type CurriculumUnit struct {
	ID          uint `json:"id" gorm:"primaryKey;autoIncrement"`
	StudGroupID uint `json:"stud_group_id" gorm:"not null;uniqueIndex:idx_curriculum_units_group_subject"`
	SubjectID   uint `json:"subject_id" gorm:"not null;uniqueIndex:idx_curriculum_units_group_subject"`
	TeacherID   uint `json:"teacher_id" gorm:"not null;index"`
}

func (CurriculumUnit) TableName() string {
	return "curriculum_units"
}

// Максимальный балл за одну аттестацию
const MaxSubScore = 100

type AttMark struct {
	ID               uint `json:"id" gorm:"primaryKey;autoIncrement"`
	CurriculumUnitID uint `json:"curriculum_unit_id" gorm:"not null;uniqueIndex:idx_att_marks_unit_student"`
	StudentID        uint `json:"student_id" gorm:"not null;uniqueIndex:idx_att_marks_unit_student;index"`
	AttMark1         *int `json:"att_mark_1"`
	AttMark2         *int `json:"att_mark_2"`
	AttMark3         *int `json:"att_mark_3"`
}

func (AttMark) TableName() string {
	return "att_marks"
}

// Result хранит итог строки ведомости: сумма баллов и оценка
type Result struct {
	Total int    `json:"total"`
	Grade string `json:"grade"`
}

// ResultPrint возвращает nil, пока не выставлены все три балла
func (m AttMark) ResultPrint() *Result {
	if m.AttMark1 == nil || m.AttMark2 == nil || m.AttMark3 == nil {
		return nil
	}
	total := *m.AttMark1 + *m.AttMark2 + *m.AttMark3
	return &Result{Total: total, Grade: GradeFor(total)}
}

// GradeFor выбирает оценку по доле от максимальной суммы
func GradeFor(total int) string {
	percent := total * 100 / (3 * MaxSubScore)
	switch {
	case percent >= 85:
		return "excellent"
	case percent >= 70:
		return "good"
	case percent >= 50:
		return "satisfactory"
	default:
		return "unsatisfactory"
	}
}
