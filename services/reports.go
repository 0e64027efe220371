package services

import (
	"context"
	"math"
	"sort"

	"academic-records/models"
	"academic-records/store"
)

type ReportService struct {
	store store.Store
}

// ColumnAverage хранит средние по столбцу: nil, если хотя бы в одной строке нет значения.
type ColumnAverage struct {
	AttMark1 *float64 `json:"att_mark_1"`
	AttMark2 *float64 `json:"att_mark_2"`
	AttMark3 *float64 `json:"att_mark_3"`
	Total    *float64 `json:"total"`
}

// StudentRow хранит оценки студента по столбцам, nil там, где строки нет
type StudentRow struct {
	Student models.Student    `json:"student"`
	Marks   []*models.AttMark `json:"marks"`
}

type GroupReport struct {
	Group          models.StudGroup `json:"stud_group"`
	Columns        []UnitView       `json:"columns"`
	Rows           []StudentRow     `json:"rows"`
	ColumnAverages []ColumnAverage  `json:"column_averages"`
}

type StudentReportEntry struct {
	Mark    models.AttMark        `json:"mark"`
	Result  *models.Result        `json:"result"`
	Unit    models.CurriculumUnit `json:"curriculum_unit"`
	Group   models.StudGroup      `json:"stud_group"`
	Subject models.Subject        `json:"subject"`
	Teacher models.Teacher        `json:"teacher"`
}

type StudentReport struct {
	Student models.Student       `json:"student"`
	Entries []StudentReportEntry `json:"entries"`
}

const (
	colAttMark1 = iota
	colAttMark2
	colAttMark3
	colTotal
	numColumns
)

// runningSum после первого пропуска остаётся недоступной
type runningSum struct {
	value    float64
	poisoned bool
}

func (s *runningSum) add(v *int) {
	if s.poisoned {
		return
	}
	if v == nil {
		s.poisoned = true
		return
	}
	s.value += float64(*v)
}

func (s runningSum) average(rows int) *float64 {
	if s.poisoned {
		return nil
	}
	v := s.value
	if rows > 0 {
		v = round2(v / float64(rows))
	}
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func columnValues(m models.AttMark) [numColumns]*int {
	var total *int
	if r := m.ResultPrint(); r != nil {
		t := r.Total
		total = &t
	}
	return [numColumns]*int{
		colAttMark1: m.AttMark1,
		colAttMark2: m.AttMark2,
		colAttMark3: m.AttMark3,
		colTotal:    total,
	}
}

// AggregateGroup строит строки отчёта и средние по столбцам. В marks лежат
// строки ведомостей по id единицы плана, в students все студенты из них.
// Среднее делится на число строк отчёта, а не на число строк ведомости.
func AggregateGroup(units []models.CurriculumUnit, marks map[uint][]models.AttMark, students map[uint]models.Student) ([]StudentRow, []ColumnAverage) {
	sums := make([][numColumns]runningSum, len(units))
	byStudent := make(map[uint]*StudentRow)

	for i, u := range units {
		for _, m := range marks[u.ID] {
			row, ok := byStudent[m.StudentID]
			if !ok {
				row = &StudentRow{Student: students[m.StudentID], Marks: make([]*models.AttMark, len(units))}
				byStudent[m.StudentID] = row
			}
			mark := m
			row.Marks[i] = &mark

			for c, v := range columnValues(m) {
				sums[i][c].add(v)
			}
		}
	}

	rows := make([]StudentRow, 0, len(byStudent))
	for _, r := range byStudent {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return models.LessByName(rows[i].Student, rows[j].Student) })

	averages := make([]ColumnAverage, len(units))
	for i := range units {
		averages[i] = ColumnAverage{
			AttMark1: sums[i][colAttMark1].average(len(rows)),
			AttMark2: sums[i][colAttMark2].average(len(rows)),
			AttMark3: sums[i][colAttMark3].average(len(rows)),
			Total:    sums[i][colTotal].average(len(rows)),
		}
	}
	return rows, averages
}

// GroupReport строит сводную ведомость группы
func (svc *ReportService) GroupReport(ctx context.Context, groupID uint) (*GroupReport, error) {
	var report *GroupReport
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		g, err := tx.GetGroup(groupID)
		if err != nil {
			return lookup("stud_group", groupID, err)
		}
		units, err := tx.FindUnits(store.UnitFilter{StudGroupID: groupID})
		if err != nil {
			return err
		}

		columns := make([]UnitView, 0, len(units))
		marks := make(map[uint][]models.AttMark, len(units))
		students := make(map[uint]models.Student)
		for _, u := range units {
			view, err := resolveUnit(tx, u)
			if err != nil {
				return err
			}
			columns = append(columns, *view)

			unitMarks, err := tx.FindMarks(store.MarkFilter{CurriculumUnitID: u.ID})
			if err != nil {
				return err
			}
			marks[u.ID] = unitMarks
			for _, m := range unitMarks {
				if _, ok := students[m.StudentID]; ok {
					continue
				}
				s, err := tx.GetStudent(m.StudentID)
				if err != nil {
					return lookup("student", m.StudentID, err)
				}
				students[s.ID] = *s
			}
		}

		rows, averages := AggregateGroup(units, marks, students)
		report = &GroupReport{Group: *g, Columns: columns, Rows: rows, ColumnAverages: averages}
		return nil
	})
	return report, err
}

// StudentReport собирает все оценки студента по году и семестру группы, затем по единице плана
func (svc *ReportService) StudentReport(ctx context.Context, studentID uint) (*StudentReport, error) {
	var report *StudentReport
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		s, err := tx.GetStudent(studentID)
		if err != nil {
			return lookup("student", studentID, err)
		}
		marks, err := tx.FindMarks(store.MarkFilter{StudentID: studentID})
		if err != nil {
			return err
		}

		entries := make([]StudentReportEntry, 0, len(marks))
		for _, m := range marks {
			u, err := tx.GetUnit(m.CurriculumUnitID)
			if err != nil {
				return lookup("curriculum_unit", m.CurriculumUnitID, err)
			}
			view, err := resolveUnit(tx, *u)
			if err != nil {
				return err
			}
			entries = append(entries, StudentReportEntry{
				Mark:    m,
				Result:  m.ResultPrint(),
				Unit:    view.Unit,
				Group:   view.Group,
				Subject: view.Subject,
				Teacher: view.Teacher,
			})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.Group.Year != b.Group.Year {
				return a.Group.Year < b.Group.Year
			}
			if a.Group.Semester != b.Group.Semester {
				return a.Group.Semester < b.Group.Semester
			}
			return a.Unit.ID < b.Unit.ID
		})

		report = &StudentReport{Student: *s, Entries: entries}
		return nil
	})
	return report, err
}
