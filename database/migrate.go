package database

import (
	"fmt"
	"log"

	"academic-records/models"

	"gorm.io/gorm"
)

// Migrate создаёт схему. При reset таблицы сначала удаляются.
func Migrate(db *gorm.DB, reset bool) error {
	log.Println("🔄 Starting database migration...")

	if reset {
		log.Println("🗑️ Dropping existing tables...")
		dropOrder := []string{
			"att_marks",
			"curriculum_units",
			"students",
			"teachers",
			"subjects",
			"stud_groups",
			"admin_users",
		}

		for _, table := range dropOrder {
			if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
				log.Printf("⚠️ Warning: Could not drop table %s: %v", table, err)
			}
		}
	}

	// Сначала независимые таблицы, потом зависимые
	tables := []interface{}{
		&models.StudGroup{},
		&models.Subject{},
		&models.Teacher{},
		&models.AdminUser{},
		&models.Student{},
		&models.CurriculumUnit{},
		&models.AttMark{},
	}

	for _, table := range tables {
		if err := db.AutoMigrate(table); err != nil {
			log.Printf("❌ Error migrating table %T: %v", table, err)
			return err
		}
		log.Printf("✅ Created/Updated table for: %T", table)
	}

	if err := createConstraints(db); err != nil {
		return err
	}

	log.Println("✅ Database migration completed successfully!")
	return nil
}

func createConstraints(db *gorm.DB) error {
	log.Println("📊 Creating indexes and foreign keys...")

	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_students_full_name ON students(surname, firstname, middlename)",
		"CREATE INDEX IF NOT EXISTS idx_curriculum_units_subject ON curriculum_units(subject_id)",
	}
	// внешние ключи добавляются блоками DO, они есть только в PostgreSQL
	if db.Dialector.Name() == "postgres" {
		statements = append(statements, foreignKeys...)
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			log.Printf("❌ Error creating constraint: %v", err)
			return err
		}
	}

	log.Println("✅ Indexes created successfully!")
	return nil
}

var foreignKeys = []string{
	`DO $$ BEGIN
			ALTER TABLE students ADD CONSTRAINT fk_students_stud_group
				FOREIGN KEY (stud_group_id) REFERENCES stud_groups(id);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN
			ALTER TABLE curriculum_units ADD CONSTRAINT fk_curriculum_units_stud_group
				FOREIGN KEY (stud_group_id) REFERENCES stud_groups(id);
			ALTER TABLE curriculum_units ADD CONSTRAINT fk_curriculum_units_subject
				FOREIGN KEY (subject_id) REFERENCES subjects(id);
			ALTER TABLE curriculum_units ADD CONSTRAINT fk_curriculum_units_teacher
				FOREIGN KEY (teacher_id) REFERENCES teachers(id);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`DO $$ BEGIN
			ALTER TABLE att_marks ADD CONSTRAINT fk_att_marks_unit
				FOREIGN KEY (curriculum_unit_id) REFERENCES curriculum_units(id);
			ALTER TABLE att_marks ADD CONSTRAINT fk_att_marks_student
				FOREIGN KEY (student_id) REFERENCES students(id);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
}
