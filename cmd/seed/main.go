package main

import (
	"encoding/json"
	"errors"
	"os"

	"lms-be/internal/model"
	"lms-be/pkg/database"
	"lms-be/pkg/richtext"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type lesson struct {
	Title  string
	Markup string
}

var demoLessons = []lesson{
	{
		Title:  "Welcome",
		Markup: `<h1>Welcome</h1><p>This course walks through the basics of <b>JavaScript</b>.</p><ul><li>Variables</li><li>Functions</li></ul>`,
	},
	{
		Title:  "Your first function",
		Markup: `<h2>Functions</h2><p>Declare a function and call it:</p><pre><code class="language-javascript">function greet(name) {
  return "Hello, " + name;
}

console.log(greet("world"));</code></pre>`,
	},
}

func main() {
	if err := godotenv.Load(); err != nil {
		color.Yellow("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	username := envOr("SEED_ADMIN_USERNAME", "admin")
	password := envOr("SEED_ADMIN_PASSWORD", "admin123")

	color.Cyan("Seeding admin user %q...", username)
	admin, err := seedAdmin(db, username, password)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}

	color.Cyan("Seeding demo course...")
	if err := seedCourse(db, admin); err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}

	color.Green("✅ Seeding completed")
}

func seedAdmin(db *gorm.DB, username, password string) (*model.User, error) {
	var existing model.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		color.Yellow("User '%s' already exists, skipping...", username)
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         "admin",
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	color.Green("Created admin: %s", user.Username)
	return &user, nil
}

func seedCourse(db *gorm.DB, admin *model.User) error {
	const title = "JavaScript Fundamentals"

	var count int64
	if err := db.Model(&model.Course{}).Where("title = ?", title).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		color.Yellow("Course '%s' already exists, skipping...", title)
		return nil
	}

	highlighter := richtext.NewChromaHighlighter("github")

	return db.Transaction(func(tx *gorm.DB) error {
		course := model.Course{
			Title:       title,
			Description: "Learn the core syntax of JavaScript, one lesson at a time.",
			CreatedById: admin.Id,
		}
		if err := tx.Create(&course).Error; err != nil {
			return err
		}

		for i, l := range demoLessons {
			doc, err := richtext.Parse(l.Markup)
			if err != nil {
				return err
			}
			outline, err := json.Marshal(doc.Outline())
			if err != nil {
				return err
			}
			body, err := richtext.HighlightMarkup(doc.Serialize(), highlighter)
			if err != nil {
				return err
			}

			content := model.Content{
				CourseId:    course.Id,
				Title:       l.Title,
				Body:        body,
				Outline:     outline,
				Position:    i + 1,
				Highlighted: true,
			}
			if err := tx.Create(&content).Error; err != nil {
				return err
			}
			color.Green("  + lesson %d: %s", content.Position, content.Title)
		}
		return nil
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
