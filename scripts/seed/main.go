// Command seed populates a development database with a small demo dataset:
// an admin, two lecturers with courses, and a handful of candidates with
// applications. It is idempotent per email.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tutorhub/selection-api/internal/models"
	"github.com/tutorhub/selection-api/internal/repository"
	"github.com/tutorhub/selection-api/pkg/config"
	"github.com/tutorhub/selection-api/pkg/database"
)

type seedUser struct {
	email     string
	firstName string
	lastName  string
	role      models.UserRole
}

var seedUsers = []seedUser{
	{"admin@tutorhub.local", "Alice", "Admin", models.RoleAdmin},
	{"lecturer.one@tutorhub.local", "Liam", "Osei", models.RoleLecturer},
	{"lecturer.two@tutorhub.local", "Mona", "Keller", models.RoleLecturer},
	{"candidate.one@tutorhub.local", "Nia", "Brown", models.RoleCandidate},
	{"candidate.two@tutorhub.local", "Omar", "Diallo", models.RoleCandidate},
	{"candidate.three@tutorhub.local", "Pia", "Nilsson", models.RoleCandidate},
}

func main() {
	var password string
	flag.StringVar(&password, "password", "Chang3MePlease", "password assigned to every seeded account")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	courses := repository.NewCourseRepository(db)
	applications := repository.NewApplicationRepository(db)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	ids := make(map[string]string, len(seedUsers))
	for _, seed := range seedUsers {
		existing, err := users.FindByEmail(ctx, seed.email)
		if err == nil {
			ids[seed.email] = existing.ID
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			log.Fatalf("failed to check %s: %v", seed.email, err)
		}

		user := &models.User{
			Email:        seed.email,
			PasswordHash: string(hash),
			FirstName:    seed.firstName,
			LastName:     seed.lastName,
			Role:         seed.role,
		}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("failed to create %s: %v", seed.email, err)
		}
		if err := profiles.Create(ctx, &models.Profile{UserID: user.ID}); err != nil {
			log.Fatalf("failed to create profile for %s: %v", seed.email, err)
		}
		if err := applications.Upsert(ctx, &models.CourseApplication{UserID: user.ID, CourseIDs: []string{}}); err != nil {
			log.Fatalf("failed to create application row for %s: %v", seed.email, err)
		}
		ids[seed.email] = user.ID
		fmt.Printf("created %s (%s)\n", seed.email, seed.role)
	}

	lectOne := ids["lecturer.one@tutorhub.local"]
	lectTwo := ids["lecturer.two@tutorhub.local"]
	courseSeeds := []models.Course{
		{Code: "COMP1511", Title: "Programming Fundamentals", LecturerID: &lectOne},
		{Code: "COMP2521", Title: "Data Structures and Algorithms", LecturerID: &lectOne},
		{Code: "COMP3311", Title: "Database Systems", LecturerID: &lectTwo},
	}

	all, err := courses.ListAll(ctx)
	if err != nil {
		log.Fatalf("failed to list courses: %v", err)
	}
	existingCodes := make(map[string]string, len(all))
	for _, course := range all {
		existingCodes[course.Code] = course.ID
	}

	courseIDs := make([]string, 0, len(courseSeeds))
	for i := range courseSeeds {
		if id, ok := existingCodes[courseSeeds[i].Code]; ok {
			courseIDs = append(courseIDs, id)
			continue
		}
		if err := courses.Create(ctx, &courseSeeds[i]); err != nil {
			log.Fatalf("failed to create course %s: %v", courseSeeds[i].Code, err)
		}
		courseIDs = append(courseIDs, courseSeeds[i].ID)
		fmt.Printf("created course %s\n", courseSeeds[i].Code)
	}

	candidateCourses := map[string][]string{
		"candidate.one@tutorhub.local":   courseIDs,
		"candidate.two@tutorhub.local":   courseIDs[:1],
		"candidate.three@tutorhub.local": {},
	}
	for email, applied := range candidateCourses {
		if err := applications.Upsert(ctx, &models.CourseApplication{
			UserID:    ids[email],
			CourseIDs: applied,
		}); err != nil {
			log.Fatalf("failed to seed applications for %s: %v", email, err)
		}
	}

	fmt.Println("seed complete")
}
