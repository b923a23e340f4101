package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"lms-be/internal/entity"
	"lms-be/internal/model"
	"lms-be/internal/repository/specification"
	"lms-be/internal/repository/unitofwork"
	"lms-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err, "Failed to connect to DB")
	require.NoError(t, gormDB.AutoMigrate(&model.User{}, &model.Course{}, &model.Content{}, &model.Enrollment{}))

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(ctx)

	sqlDB, _ := gormDB.DB()
	assert.NoError(t, sqlDB.Ping())

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(ctx)
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Course lifecycle in transaction", func(t *testing.T) {
		user := &entity.User{
			Id:           uuid.New(),
			Username:     "integration-" + uuid.NewString(),
			PasswordHash: "x",
			Role:         entity.UserRoleAdmin,
		}
		require.NoError(t, uow.UserRepository().Create(ctx, user))
		t.Cleanup(func() {
			gormDB.Unscoped().Where("id = ?", user.Id).Delete(&model.User{})
		})

		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		course := &entity.Course{
			Id:          uuid.New(),
			Title:       "Integration Course",
			Description: "created by the integration test",
			CreatedById: user.Id,
		}
		require.NoError(t, uow.CourseRepository().Create(ctx, course))

		for i, title := range []string{"Second", "First"} {
			content := &entity.Content{
				Id:       uuid.New(),
				CourseId: course.Id,
				Title:    title,
				Body:     "<p>" + title + "</p>",
				Order:    2 - i,
			}
			require.NoError(t, uow.ContentRepository().Create(ctx, content))
		}

		lessons, err := uow.ContentRepository().FindAll(ctx,
			specification.ByCourseID{CourseID: course.Id},
			specification.OrderByPosition{},
		)
		require.NoError(t, err)
		require.Len(t, lessons, 2)
		assert.Equal(t, "First", lessons[0].Title)

		enrollment := &entity.Enrollment{Id: uuid.New(), UserId: user.Id, CourseId: course.Id}
		require.NoError(t, uow.EnrollmentRepository().Create(ctx, enrollment))

		enrolled, err := uow.EnrollmentRepository().FindCoursesByUser(ctx, user.Id)
		require.NoError(t, err)
		require.Len(t, enrolled, 1)
		assert.Equal(t, course.Id, enrolled[0].Course.Id)

		// Deleting a course takes its lessons and enrollments with it.
		require.NoError(t, uow.ContentRepository().DeleteByCourseId(ctx, course.Id))
		require.NoError(t, uow.EnrollmentRepository().DeleteByCourseId(ctx, course.Id))
		require.NoError(t, uow.CourseRepository().Delete(ctx, course.Id))
		require.NoError(t, uow.Commit())

		found, err := uow.CourseRepository().FindOne(ctx, specification.ByID{ID: course.Id})
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Duplicate enrollment is translated", func(t *testing.T) {
		user := model.User{Username: "integration-" + uuid.NewString(), PasswordHash: "x", Role: "user"}
		require.NoError(t, gormDB.Create(&user).Error)
		course := model.Course{Title: "Dup", Description: "dup", CreatedById: user.Id}
		require.NoError(t, gormDB.Create(&course).Error)
		t.Cleanup(func() {
			gormDB.Where("course_id = ?", course.Id).Delete(&model.Enrollment{})
			gormDB.Where("id = ?", course.Id).Delete(&model.Course{})
			gormDB.Unscoped().Where("id = ?", user.Id).Delete(&model.User{})
		})

		repo := uowFactory.NewUnitOfWork(ctx).EnrollmentRepository()
		require.NoError(t, repo.Create(ctx, &entity.Enrollment{Id: uuid.New(), UserId: user.Id, CourseId: course.Id}))
		err := repo.Create(ctx, &entity.Enrollment{Id: uuid.New(), UserId: user.Id, CourseId: course.Id})
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})
}
