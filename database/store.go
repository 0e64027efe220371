package database

import (
	"context"
	"errors"
	"fmt"

	"academic-records/models"
	"academic-records/store"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var _ store.Store = (*Store)(nil)

// Store реализует store.Store поверх GORM, каждая единица работы выполняется в транзакции
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Atomic(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		// паника превращается в ошибку, GORM откатывает транзакцию
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("unit of work panicked: %v", r)
			}
		}()
		return fn(&gormTx{db: tx})
	})
}

type gormTx struct {
	db *gorm.DB
}

// translate приводит ошибки GORM и PostgreSQL к ошибкам store
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrDuplicate
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return store.ErrDuplicate
	}
	return err
}

func deleted(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// save создаёт запись при нулевом id, иначе обновляет все поля существующей.
// Для несуществующего id возвращает store.ErrNotFound и ничего не вставляет.
func save(db *gorm.DB, id uint, value interface{}) error {
	if id == 0 {
		return translate(db.Create(value).Error)
	}
	res := db.Select("*").Updates(value)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// --- groups ---

func (t *gormTx) GetGroup(id uint) (*models.StudGroup, error) {
	var g models.StudGroup
	if err := t.db.First(&g, id).Error; err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

func (t *gormTx) groupQuery(f store.GroupFilter) *gorm.DB {
	q := t.db.Model(&models.StudGroup{})
	if f.ActiveOnly {
		q = q.Where("active")
	}
	if f.Year != nil {
		q = q.Where("year = ?", *f.Year)
	}
	if f.Semester != nil {
		q = q.Where("semester = ?", *f.Semester)
	}
	if f.Num != nil {
		q = q.Where("num = ?", *f.Num)
	}
	if f.Subnum != nil {
		q = q.Where("subnum = ?", *f.Subnum)
	}
	if f.ExcludeID != 0 {
		q = q.Where("id <> ?", f.ExcludeID)
	}
	return q
}

func (t *gormTx) FindGroups(f store.GroupFilter) ([]models.StudGroup, error) {
	var groups []models.StudGroup
	err := t.groupQuery(f).Order("year, semester, num, subnum, id").Find(&groups).Error
	return groups, translate(err)
}

func (t *gormTx) CountGroups(f store.GroupFilter) (int64, error) {
	var n int64
	err := t.groupQuery(f).Count(&n).Error
	return n, translate(err)
}

func (t *gormTx) SaveGroup(g *models.StudGroup) error {
	return save(t.db, g.ID, g)
}

func (t *gormTx) DeleteGroup(id uint) error {
	return deleted(t.db.Delete(&models.StudGroup{}, id))
}

// --- students ---

func (t *gormTx) GetStudent(id uint) (*models.Student, error) {
	var s models.Student
	if err := t.db.First(&s, id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (t *gormTx) studentQuery(f store.StudentFilter) *gorm.DB {
	q := t.db.Model(&models.Student{})
	if f.ID != 0 {
		q = q.Where("id = ?", f.ID)
	}
	if f.ExcludeID != 0 {
		q = q.Where("id <> ?", f.ExcludeID)
	}
	if f.SurnamePrefix != "" {
		q = q.Where("surname LIKE ?", f.SurnamePrefix+"%")
	}
	if f.Firstname != "" {
		q = q.Where("firstname = ?", f.Firstname)
	}
	if f.Middlename != "" {
		q = q.Where("middlename = ?", f.Middlename)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.StudGroupID != 0 {
		q = q.Where("stud_group_id = ?", f.StudGroupID)
	}
	if f.AlumnusYear != nil {
		q = q.Where("alumnus_year = ?", *f.AlumnusYear)
	}
	if f.ExpelledYear != nil {
		q = q.Where("expelled_year = ?", *f.ExpelledYear)
	}
	if f.Login != "" {
		q = q.Where("login = ?", f.Login)
	}
	return q
}

func (t *gormTx) FindStudents(f store.StudentFilter) ([]models.Student, error) {
	var students []models.Student
	err := t.studentQuery(f).Order("surname, firstname, middlename, id").Find(&students).Error
	return students, translate(err)
}

func (t *gormTx) CountStudents(f store.StudentFilter) (int64, error) {
	var n int64
	err := t.studentQuery(f).Count(&n).Error
	return n, translate(err)
}

func (t *gormTx) SaveStudent(s *models.Student) error {
	return save(t.db, s.ID, s)
}

func (t *gormTx) DeleteStudent(id uint) error {
	return deleted(t.db.Delete(&models.Student{}, id))
}

// --- subjects ---

func (t *gormTx) GetSubject(id uint) (*models.Subject, error) {
	var s models.Subject
	if err := t.db.First(&s, id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (t *gormTx) FindSubjects() ([]models.Subject, error) {
	var subjects []models.Subject
	err := t.db.Order("name, id").Find(&subjects).Error
	return subjects, translate(err)
}

func (t *gormTx) SaveSubject(s *models.Subject) error {
	return save(t.db, s.ID, s)
}

func (t *gormTx) DeleteSubject(id uint) error {
	return deleted(t.db.Delete(&models.Subject{}, id))
}

// --- teachers ---

func (t *gormTx) GetTeacher(id uint) (*models.Teacher, error) {
	var tc models.Teacher
	if err := t.db.First(&tc, id).Error; err != nil {
		return nil, translate(err)
	}
	return &tc, nil
}

func (t *gormTx) FindTeachers(f store.TeacherFilter) ([]models.Teacher, error) {
	q := t.db.Model(&models.Teacher{})
	if f.Login != "" {
		q = q.Where("login = ?", f.Login)
	}
	if f.ExcludeID != 0 {
		q = q.Where("id <> ?", f.ExcludeID)
	}
	var teachers []models.Teacher
	err := q.Order("surname, firstname, middlename, id").Find(&teachers).Error
	return teachers, translate(err)
}

func (t *gormTx) SaveTeacher(tc *models.Teacher) error {
	return save(t.db, tc.ID, tc)
}

func (t *gormTx) DeleteTeacher(id uint) error {
	return deleted(t.db.Delete(&models.Teacher{}, id))
}

// --- admin users ---

func (t *gormTx) GetAdmin(id uint) (*models.AdminUser, error) {
	var a models.AdminUser
	if err := t.db.First(&a, id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (t *gormTx) FindAdmins(f store.AdminFilter) ([]models.AdminUser, error) {
	q := t.db.Model(&models.AdminUser{})
	if f.Login != "" {
		q = q.Where("login = ?", f.Login)
	}
	if f.ExcludeID != 0 {
		q = q.Where("id <> ?", f.ExcludeID)
	}
	var admins []models.AdminUser
	err := q.Order("surname, firstname, middlename, id").Find(&admins).Error
	return admins, translate(err)
}

func (t *gormTx) SaveAdmin(a *models.AdminUser) error {
	return save(t.db, a.ID, a)
}

func (t *gormTx) DeleteAdmin(id uint) error {
	return deleted(t.db.Delete(&models.AdminUser{}, id))
}

// --- curriculum units ---

func (t *gormTx) GetUnit(id uint) (*models.CurriculumUnit, error) {
	var u models.CurriculumUnit
	if err := t.db.First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (t *gormTx) unitQuery(f store.UnitFilter) *gorm.DB {
	q := t.db.Model(&models.CurriculumUnit{})
	if f.StudGroupID != 0 {
		q = q.Where("stud_group_id = ?", f.StudGroupID)
	}
	if f.SubjectID != 0 {
		q = q.Where("subject_id = ?", f.SubjectID)
	}
	if f.TeacherID != 0 {
		q = q.Where("teacher_id = ?", f.TeacherID)
	}
	if f.ExcludeID != 0 {
		q = q.Where("id <> ?", f.ExcludeID)
	}
	return q
}

func (t *gormTx) FindUnits(f store.UnitFilter) ([]models.CurriculumUnit, error) {
	var units []models.CurriculumUnit
	err := t.unitQuery(f).Order("id").Find(&units).Error
	return units, translate(err)
}

func (t *gormTx) CountUnits(f store.UnitFilter) (int64, error) {
	var n int64
	err := t.unitQuery(f).Count(&n).Error
	return n, translate(err)
}

func (t *gormTx) SaveUnit(u *models.CurriculumUnit) error {
	return save(t.db, u.ID, u)
}

func (t *gormTx) DeleteUnit(id uint) error {
	return deleted(t.db.Delete(&models.CurriculumUnit{}, id))
}

// --- attestation marks ---

func (t *gormTx) markQuery(db *gorm.DB, f store.MarkFilter) *gorm.DB {
	q := db.Model(&models.AttMark{})
	if f.CurriculumUnitID != 0 {
		q = q.Where("curriculum_unit_id = ?", f.CurriculumUnitID)
	}
	if f.StudentID != 0 {
		q = q.Where("student_id = ?", f.StudentID)
	}
	return q
}

func (t *gormTx) FindMarks(f store.MarkFilter) ([]models.AttMark, error) {
	var marks []models.AttMark
	err := t.markQuery(t.db, f).Order("id").Find(&marks).Error
	return marks, translate(err)
}

func (t *gormTx) CountMarks(f store.MarkFilter) (int64, error) {
	var n int64
	err := t.markQuery(t.db, f).Count(&n).Error
	return n, translate(err)
}

func (t *gormTx) CreateMarks(marks []models.AttMark) error {
	if len(marks) == 0 {
		return nil
	}
	return translate(t.db.Create(&marks).Error)
}

func (t *gormTx) SaveMark(m *models.AttMark) error {
	return save(t.db, m.ID, m)
}

func (t *gormTx) DeleteMarks(f store.MarkFilter) (int64, error) {
	db := t.db
	if f == (store.MarkFilter{}) {
		db = db.Session(&gorm.Session{AllowGlobalUpdate: true})
	}
	res := t.markQuery(db, f).Delete(&models.AttMark{})
	return res.RowsAffected, translate(res.Error)
}
