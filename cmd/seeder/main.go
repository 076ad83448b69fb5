package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jaswdr/faker"
	"github.com/quocanhngo/spark/internal/config"
	"github.com/quocanhngo/spark/internal/database"
	"github.com/quocanhngo/spark/internal/logger"
	"github.com/quocanhngo/spark/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Common password for all seeded users
const password = "password123"

var interestPool = []string{
	"hiking", "coffee", "jazz", "cooking", "travel", "yoga", "photography",
	"chess", "cinema", "running", "books", "board games", "climbing", "wine",
	"techno", "painting", "cycling", "dogs", "cats", "surfing",
}

var genders = []model.Gender{model.GenderMale, model.GenderFemale, model.GenderOther}

func main() {
	count := flag.Int("users", 50, "number of users to seed")
	lat := flag.Float64("lat", 55.7558, "latitude of the city center")
	lon := flag.Float64("lon", 37.6173, "longitude of the city center")
	city := flag.String("city", "Moscow", "city name stored on profiles")
	flag.Parse()

	cfg := config.Load()
	logger.InitFromConfig(cfg)

	db, err := database.Open(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	db = db.Session(&gorm.Session{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err := database.Migrate(db, cfg); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", "error", err)
		os.Exit(1)
	}

	s := &seeder{db: db, fake: faker.New(), hash: string(hashed), lat: *lat, lon: *lon, city: *city}

	admin, err := s.user("admin@spark.local", "Spark Admin", model.GenderOther, model.RoleAdmin)
	if err != nil {
		logger.Error("failed to seed admin", "error", err)
		os.Exit(1)
	}
	logger.Info("admin ready", "email", admin.Email, "password", password)

	logger.Info("seeding users", "count", *count, "city", *city)
	var seeded []*model.User
	for i := 1; i <= *count; i++ {
		gender := genders[i%len(genders)]
		u, err := s.user(fmt.Sprintf("user%d@spark.local", i), s.name(gender), gender, model.RoleUser)
		if err != nil {
			logger.Warn("failed to seed user", "index", i, "error", err)
			continue
		}
		seeded = append(seeded, u)
	}

	if len(seeded) >= 2 {
		if err := s.demoMatch(seeded[0], seeded[1]); err != nil {
			logger.Warn("failed to seed demo match", "error", err)
		}
	}

	logger.Info("seeding completed", "users", len(seeded))
}

type seeder struct {
	db   *gorm.DB
	fake faker.Faker
	hash string
	lat  float64
	lon  float64
	city string
}

func (s *seeder) name(g model.Gender) string {
	p := s.fake.Person()
	switch g {
	case model.GenderMale:
		return p.FirstNameMale()
	case model.GenderFemale:
		return p.FirstNameFemale()
	default:
		return p.FirstName()
	}
}

// user returns the account for email, creating it with a located profile,
// one photo and default preferences when missing
func (s *seeder) user(email, name string, gender model.Gender, role model.Role) (*model.User, error) {
	var existing model.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// up to ~20 km from the center in each axis
	lat := s.lat + float64(s.fake.IntBetween(-1800, 1800))/10000
	lon := s.lon + float64(s.fake.IntBetween(-1800, 1800))/10000
	birthdate := time.Now().UTC().AddDate(-s.fake.IntBetween(18, 45), -s.fake.IntBetween(0, 11), -s.fake.IntBetween(0, 27)).Truncate(24 * time.Hour)

	u := &model.User{
		Name:      name,
		Email:     email,
		Password:  s.hash,
		Role:      role,
		Birthdate: &birthdate,
		Gender:    gender,
		Bio:       s.fake.Lorem().Sentence(8),
		City:      s.city,
		Latitude:  &lat,
		Longitude: &lon,
		Interests: s.interests(),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		if err := tx.Create(model.DefaultPreference(u.ID)).Error; err != nil {
			return err
		}
		seed := strings.ReplaceAll(strings.ToLower(name), " ", "-") + "-" + u.ID.String()[:8]
		return tx.Create(&model.Photo{
			UserID:    u.ID,
			URL:       "https://api.dicebear.com/7.x/avataaars/svg?seed=" + seed,
			IsPrimary: true,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("created user", "email", email, "name", name, "gender", gender)
	return u, nil
}

func (s *seeder) interests() []string {
	n := s.fake.IntBetween(2, 6)
	picked := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		i := s.fake.RandomStringElement(interestPool)
		if picked[i] {
			continue
		}
		picked[i] = true
		out = append(out, i)
	}
	return out
}

// demoMatch makes a and b like each other and leaves a welcome message
func (s *seeder) demoMatch(a, b *model.User) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, sw := range []model.Swipe{
			{SwiperID: a.ID, TargetID: b.ID, Direction: model.DirectionRight},
			{SwiperID: b.ID, TargetID: a.ID, Direction: model.DirectionRight},
		} {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sw).Error; err != nil {
				return err
			}
		}

		pair := model.NewMatch(a.ID, b.ID)
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(pair).Error; err != nil {
			return err
		}
		var m model.Match
		if err := tx.Where("user_a_id = ? AND user_b_id = ?", pair.UserAID, pair.UserBID).First(&m).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&model.Message{}).Where("match_id = ?", m.ID).Count(&count).Error; err != nil || count > 0 {
			return err
		}
		logger.Info("created demo match", "match_id", m.ID, "a", a.Email, "b", b.Email)
		return tx.Create(&model.Message{
			MatchID:  m.ID,
			SenderID: a.ID,
			Text:     "Hey " + b.Name + "! Nice to match with you 👋",
		}).Error
	})
}
