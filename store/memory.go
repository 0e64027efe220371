package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"academic-records/models"
)

var _ Store = (*Memory)(nil)

// Memory хранит данные в памяти процесса. Единица работы меняет свою копию
// состояния, общая копия заменяется только при фиксации.
type Memory struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	nextID   uint
	groups   map[uint]models.StudGroup
	students map[uint]models.Student
	subjects map[uint]models.Subject
	teachers map[uint]models.Teacher
	admins   map[uint]models.AdminUser
	units    map[uint]models.CurriculumUnit
	marks    map[uint]models.AttMark
}

func NewMemory() *Memory {
	return &Memory{state: &memState{
		groups:   map[uint]models.StudGroup{},
		students: map[uint]models.Student{},
		subjects: map[uint]models.Subject{},
		teachers: map[uint]models.Teacher{},
		admins:   map[uint]models.AdminUser{},
		units:    map[uint]models.CurriculumUnit{},
		marks:    map[uint]models.AttMark{},
	}}
}

func (m *Memory) Atomic(ctx context.Context, fn func(tx Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.state.clone()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unit of work panicked: %v", r)
		}
	}()

	if err := fn(&memTx{s: work}); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (s *memState) clone() *memState {
	c := &memState{
		nextID:   s.nextID,
		groups:   make(map[uint]models.StudGroup, len(s.groups)),
		students: make(map[uint]models.Student, len(s.students)),
		subjects: make(map[uint]models.Subject, len(s.subjects)),
		teachers: make(map[uint]models.Teacher, len(s.teachers)),
		admins:   make(map[uint]models.AdminUser, len(s.admins)),
		units:    make(map[uint]models.CurriculumUnit, len(s.units)),
		marks:    make(map[uint]models.AttMark, len(s.marks)),
	}
	for k, v := range s.groups {
		c.groups[k] = v
	}
	for k, v := range s.students {
		c.students[k] = copyStudent(v)
	}
	for k, v := range s.subjects {
		c.subjects[k] = v
	}
	for k, v := range s.teachers {
		c.teachers[k] = copyTeacher(v)
	}
	for k, v := range s.admins {
		c.admins[k] = v
	}
	for k, v := range s.units {
		c.units[k] = v
	}
	for k, v := range s.marks {
		c.marks[k] = copyMark(v)
	}
	return c
}

func ptr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyStudent(s models.Student) models.Student {
	s.Login = ptr(s.Login)
	s.StudGroupID = ptr(s.StudGroupID)
	s.Semester = ptr(s.Semester)
	s.AlumnusYear = ptr(s.AlumnusYear)
	s.ExpelledYear = ptr(s.ExpelledYear)
	return s
}

func copyTeacher(t models.Teacher) models.Teacher {
	t.Login = ptr(t.Login)
	return t
}

func copyMark(m models.AttMark) models.AttMark {
	m.AttMark1 = ptr(m.AttMark1)
	m.AttMark2 = ptr(m.AttMark2)
	m.AttMark3 = ptr(m.AttMark3)
	return m
}

func intEq(p *int, v int) bool { return p == nil || *p == v }

func sameLogin(a *string, b string) bool { return a != nil && *a == b }

type memTx struct {
	s *memState
}

func (t *memTx) id(current uint) uint {
	if current != 0 {
		if current > t.s.nextID {
			t.s.nextID = current
		}
		return current
	}
	t.s.nextID++
	return t.s.nextID
}

// --- groups ---

func (t *memTx) GetGroup(id uint) (*models.StudGroup, error) {
	g, ok := t.s.groups[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &g, nil
}

func (t *memTx) matchGroup(g models.StudGroup, f GroupFilter) bool {
	return (!f.ActiveOnly || g.Active) &&
		intEq(f.Year, g.Year) && intEq(f.Semester, g.Semester) &&
		intEq(f.Num, g.Num) && intEq(f.Subnum, g.Subnum) &&
		(f.ExcludeID == 0 || g.ID != f.ExcludeID)
}

func (t *memTx) FindGroups(f GroupFilter) ([]models.StudGroup, error) {
	var out []models.StudGroup
	for _, g := range t.s.groups {
		if t.matchGroup(g, f) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Semester != b.Semester {
			return a.Semester < b.Semester
		}
		if a.Num != b.Num {
			return a.Num < b.Num
		}
		if a.Subnum != b.Subnum {
			return a.Subnum < b.Subnum
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (t *memTx) CountGroups(f GroupFilter) (int64, error) {
	groups, err := t.FindGroups(f)
	return int64(len(groups)), err
}

func (t *memTx) SaveGroup(g *models.StudGroup) error {
	for _, other := range t.s.groups {
		if other.ID != g.ID && other.Year == g.Year && other.Semester == g.Semester &&
			other.Num == g.Num && other.Subnum == g.Subnum {
			return ErrDuplicate
		}
	}
	if g.ID != 0 {
		if _, ok := t.s.groups[g.ID]; !ok {
			return ErrNotFound
		}
	}
	g.ID = t.id(g.ID)
	t.s.groups[g.ID] = *g
	return nil
}

func (t *memTx) DeleteGroup(id uint) error {
	if _, ok := t.s.groups[id]; !ok {
		return ErrNotFound
	}
	delete(t.s.groups, id)
	return nil
}

// --- students ---

func (t *memTx) GetStudent(id uint) (*models.Student, error) {
	s, ok := t.s.students[id]
	if !ok {
		return nil, ErrNotFound
	}
	s = copyStudent(s)
	return &s, nil
}

func matchStudent(s models.Student, f StudentFilter) bool {
	switch {
	case f.ID != 0 && s.ID != f.ID:
		return false
	case f.ExcludeID != 0 && s.ID == f.ExcludeID:
		return false
	case f.SurnamePrefix != "" && !strings.HasPrefix(s.Surname, f.SurnamePrefix):
		return false
	case f.Firstname != "" && s.Firstname != f.Firstname:
		return false
	case f.Middlename != "" && s.Middlename != f.Middlename:
		return false
	case f.Status != "" && s.Status != f.Status:
		return false
	case f.StudGroupID != 0 && (s.StudGroupID == nil || *s.StudGroupID != f.StudGroupID):
		return false
	case f.AlumnusYear != nil && (s.AlumnusYear == nil || *s.AlumnusYear != *f.AlumnusYear):
		return false
	case f.ExpelledYear != nil && (s.ExpelledYear == nil || *s.ExpelledYear != *f.ExpelledYear):
		return false
	case f.Login != "" && !sameLogin(s.Login, f.Login):
		return false
	}
	return true
}

func (t *memTx) FindStudents(f StudentFilter) ([]models.Student, error) {
	var out []models.Student
	for _, s := range t.s.students {
		if matchStudent(s, f) {
			out = append(out, copyStudent(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return models.LessByName(out[i], out[j]) })
	return out, nil
}

func (t *memTx) CountStudents(f StudentFilter) (int64, error) {
	var n int64
	for _, s := range t.s.students {
		if matchStudent(s, f) {
			n++
		}
	}
	return n, nil
}

func (t *memTx) SaveStudent(s *models.Student) error {
	if s.Login != nil {
		for _, other := range t.s.students {
			if other.ID != s.ID && sameLogin(other.Login, *s.Login) {
				return ErrDuplicate
			}
		}
	}
	if s.ID != 0 {
		if _, ok := t.s.students[s.ID]; !ok {
			return ErrNotFound
		}
	}
	s.ID = t.id(s.ID)
	t.s.students[s.ID] = copyStudent(*s)
	return nil
}

func (t *memTx) DeleteStudent(id uint) error {
	if _, ok := t.s.students[id]; !ok {
		return ErrNotFound
	}
	delete(t.s.students, id)
	return nil
}

// --- subjects ---

func (t *memTx) GetSubject(id uint) (*models.Subject, error) {
	s, ok := t.s.subjects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (t *memTx) FindSubjects() ([]models.Subject, error) {
	out := make([]models.Subject, 0, len(t.s.subjects))
	for _, s := range t.s.subjects {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (t *memTx) SaveSubject(s *models.Subject) error {
	for _, other := range t.s.subjects {
		if other.ID != s.ID && other.Name == s.Name {
			return ErrDuplicate
		}
	}
	if s.ID != 0 {
		if _, ok := t.s.subjects[s.ID]; !ok {
			return ErrNotFound
		}
	}
	s.ID = t.id(s.ID)
	t.s.subjects[s.ID] = *s
	return nil
}

func (t *memTx) DeleteSubject(id uint) error {
	if _, ok := t.s.subjects[id]; !ok {
		return ErrNotFound
	}
	delete(t.s.subjects, id)
	return nil
}

// --- teachers ---

func (t *memTx) GetTeacher(id uint) (*models.Teacher, error) {
	tc, ok := t.s.teachers[id]
	if !ok {
		return nil, ErrNotFound
	}
	tc = copyTeacher(tc)
	return &tc, nil
}

func (t *memTx) FindTeachers(f TeacherFilter) ([]models.Teacher, error) {
	var out []models.Teacher
	for _, tc := range t.s.teachers {
		if f.Login != "" && !sameLogin(tc.Login, f.Login) {
			continue
		}
		if f.ExcludeID != 0 && tc.ID == f.ExcludeID {
			continue
		}
		out = append(out, copyTeacher(tc))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Surname != b.Surname {
			return a.Surname < b.Surname
		}
		if a.Firstname != b.Firstname {
			return a.Firstname < b.Firstname
		}
		if a.Middlename != b.Middlename {
			return a.Middlename < b.Middlename
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (t *memTx) SaveTeacher(tc *models.Teacher) error {
	if tc.Login != nil {
		for _, other := range t.s.teachers {
			if other.ID != tc.ID && sameLogin(other.Login, *tc.Login) {
				return ErrDuplicate
			}
		}
	}
	if tc.ID != 0 {
		if _, ok := t.s.teachers[tc.ID]; !ok {
			return ErrNotFound
		}
	}
	tc.ID = t.id(tc.ID)
	t.s.teachers[tc.ID] = copyTeacher(*tc)
	return nil
}

func (t *memTx) DeleteTeacher(id uint) error {
	if _, ok := t.s.teachers[id]; !ok {
		return ErrNotFound
	}
	delete(t.s.teachers, id)
	return nil
}

// --- admin users ---

func (t *memTx) GetAdmin(id uint) (*models.AdminUser, error) {
	a, ok := t.s.admins[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (t *memTx) FindAdmins(f AdminFilter) ([]models.AdminUser, error) {
	var out []models.AdminUser
	for _, a := range t.s.admins {
		if f.Login != "" && a.Login != f.Login {
			continue
		}
		if f.ExcludeID != 0 && a.ID == f.ExcludeID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Surname != b.Surname {
			return a.Surname < b.Surname
		}
		if a.Firstname != b.Firstname {
			return a.Firstname < b.Firstname
		}
		if a.Middlename != b.Middlename {
			return a.Middlename < b.Middlename
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (t *memTx) SaveAdmin(a *models.AdminUser) error {
	for _, other := range t.s.admins {
		if other.ID != a.ID && other.Login == a.Login {
			return ErrDuplicate
		}
	}
	if a.ID != 0 {
		if _, ok := t.s.admins[a.ID]; !ok {
			return ErrNotFound
		}
	}
	a.ID = t.id(a.ID)
	t.s.admins[a.ID] = *a
	return nil
}

func (t *memTx) DeleteAdmin(id uint) error {
	if _, ok := t.s.admins[id]; !ok {
		return ErrNotFound
	}
	delete(t.s.admins, id)
	return nil
}

// --- curriculum units ---

func (t *memTx) GetUnit(id uint) (*models.CurriculumUnit, error) {
	u, ok := t.s.units[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func matchUnit(u models.CurriculumUnit, f UnitFilter) bool {
	return (f.StudGroupID == 0 || u.StudGroupID == f.StudGroupID) &&
		(f.SubjectID == 0 || u.SubjectID == f.SubjectID) &&
		(f.TeacherID == 0 || u.TeacherID == f.TeacherID) &&
		(f.ExcludeID == 0 || u.ID != f.ExcludeID)
}

func (t *memTx) FindUnits(f UnitFilter) ([]models.CurriculumUnit, error) {
	var out []models.CurriculumUnit
	for _, u := range t.s.units {
		if matchUnit(u, f) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) CountUnits(f UnitFilter) (int64, error) {
	units, err := t.FindUnits(f)
	return int64(len(units)), err
}

func (t *memTx) SaveUnit(u *models.CurriculumUnit) error {
	for _, other := range t.s.units {
		if other.ID != u.ID && other.StudGroupID == u.StudGroupID && other.SubjectID == u.SubjectID {
			return ErrDuplicate
		}
	}
	if u.ID != 0 {
		if _, ok := t.s.units[u.ID]; !ok {
			return ErrNotFound
		}
	}
	u.ID = t.id(u.ID)
	t.s.units[u.ID] = *u
	return nil
}

func (t *memTx) DeleteUnit(id uint) error {
	if _, ok := t.s.units[id]; !ok {
		return ErrNotFound
	}
	delete(t.s.units, id)
	return nil
}

// --- attestation marks ---

func matchMark(m models.AttMark, f MarkFilter) bool {
	return (f.CurriculumUnitID == 0 || m.CurriculumUnitID == f.CurriculumUnitID) &&
		(f.StudentID == 0 || m.StudentID == f.StudentID)
}

func (t *memTx) FindMarks(f MarkFilter) ([]models.AttMark, error) {
	var out []models.AttMark
	for _, m := range t.s.marks {
		if matchMark(m, f) {
			out = append(out, copyMark(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) CountMarks(f MarkFilter) (int64, error) {
	var n int64
	for _, m := range t.s.marks {
		if matchMark(m, f) {
			n++
		}
	}
	return n, nil
}

func (t *memTx) CreateMarks(marks []models.AttMark) error {
	for i := range marks {
		marks[i].ID = 0
		if err := t.SaveMark(&marks[i]); err != nil {
			return err
		}
	}
	return nil
}

func (t *memTx) SaveMark(m *models.AttMark) error {
	for _, other := range t.s.marks {
		if other.ID != m.ID && other.CurriculumUnitID == m.CurriculumUnitID && other.StudentID == m.StudentID {
			return ErrDuplicate
		}
	}
	if m.ID != 0 {
		if _, ok := t.s.marks[m.ID]; !ok {
			return ErrNotFound
		}
	}
	m.ID = t.id(m.ID)
	t.s.marks[m.ID] = copyMark(*m)
	return nil
}

func (t *memTx) DeleteMarks(f MarkFilter) (int64, error) {
	var n int64
	for id, m := range t.s.marks {
		if matchMark(m, f) {
			delete(t.s.marks, id)
			n++
		}
	}
	return n, nil
}
