package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"academic-records/models"
	"academic-records/store"

	"golang.org/x/crypto/bcrypt"
)

// Seed заполняет пустое хранилище начальными данными
func Seed(ctx context.Context, st store.Store) error {
	log.Println("🌱 Seeding initial data...")

	return st.Atomic(ctx, func(tx store.Tx) error {
		admins, err := tx.FindAdmins(store.AdminFilter{})
		if err != nil {
			return err
		}
		if len(admins) > 0 {
			log.Println("✅ Store already has data, skipping seed")
			return nil
		}

		hash := func(password string) (string, error) {
			h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return "", fmt.Errorf("failed to hash password: %w", err)
			}
			return string(h), nil
		}

		adminHash, err := hash("admin123")
		if err != nil {
			return err
		}
		admin := models.AdminUser{Surname: "Администратор", Firstname: "Системный", Login: "admin", PasswordHash: adminHash}
		if err := tx.SaveAdmin(&admin); err != nil {
			log.Printf("❌ Error creating admin user: %v", err)
			return err
		}
		log.Printf("✅ Created admin user: %s (password: admin123)", admin.Login)

		group := models.StudGroup{Year: models.AcademicYear(time.Now()), Semester: 1, Num: 1, Active: true}
		if err := tx.SaveGroup(&group); err != nil {
			log.Printf("❌ Error creating group: %v", err)
			return err
		}

		subjects := []models.Subject{{Name: "Информатика"}, {Name: "Математический анализ"}}
		for i := range subjects {
			if err := tx.SaveSubject(&subjects[i]); err != nil {
				log.Printf("❌ Error creating subject: %v", err)
				return err
			}
		}

		teacherHash, err := hash("teacher123")
		if err != nil {
			return err
		}
		teacherLogin := "teacher"
		teacher := models.Teacher{Surname: "Петров", Firstname: "Пётр", Rank: "доцент", Login: &teacherLogin, PasswordHash: teacherHash}
		if err := tx.SaveTeacher(&teacher); err != nil {
			log.Printf("❌ Error creating teacher: %v", err)
			return err
		}

		studentHash, err := hash("student123")
		if err != nil {
			return err
		}
		studentLogin := "student"
		semester := group.Semester
		student := models.Student{
			Surname:      "Иванов",
			Firstname:    "Иван",
			Login:        &studentLogin,
			PasswordHash: studentHash,
			Status:       models.StatusStudy,
			StudGroupID:  &group.ID,
			Semester:     &semester,
		}
		if err := tx.SaveStudent(&student); err != nil {
			log.Printf("❌ Error creating student: %v", err)
			return err
		}

		for _, s := range subjects {
			unit := models.CurriculumUnit{StudGroupID: group.ID, SubjectID: s.ID, TeacherID: teacher.ID}
			if err := tx.SaveUnit(&unit); err != nil {
				log.Printf("❌ Error creating curriculum unit: %v", err)
				return err
			}
		}

		log.Println("✅ Initial data seeded successfully!")
		return nil
	})
}
