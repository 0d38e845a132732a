// Command seed-db creates the initial admin account and a starter set of
// blog posts and ad campaigns. Safe to run repeatedly: records that already
// exist are left untouched.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/mizanhq/mizan/db"
	"github.com/mizanhq/mizan/internal/domain/ad"
	"github.com/mizanhq/mizan/internal/domain/blog"
	"github.com/mizanhq/mizan/internal/domain/user"
	"github.com/mizanhq/mizan/internal/i18n"
	"github.com/mizanhq/mizan/internal/migrate"
	"github.com/mizanhq/mizan/internal/repository"
)

func main() {
	var (
		databaseURL   string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&adminEmail, "admin-email", "", "admin account email (or MIZAN_SEED_ADMIN_EMAIL env)")
	flag.StringVar(&adminPassword, "admin-password", "", "admin account password (or MIZAN_SEED_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminEmail == "" {
		adminEmail = os.Getenv("MIZAN_SEED_ADMIN_EMAIL")
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("MIZAN_SEED_ADMIN_PASSWORD")
	}
	if adminEmail == "" || adminPassword == "" {
		slog.Error("admin credentials are required: set --admin-email and --admin-password")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, adminEmail, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	runner := migrate.NewRunner(pool, db.Migrations())
	if _, err := runner.Up(ctx); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedAdmin(ctx, repository.NewUserRepository(pool), adminEmail, adminPassword); err != nil {
		return errors.Wrap(err, "seed admin")
	}
	if err := seedPosts(ctx, repository.NewPostRepository(pool)); err != nil {
		return errors.Wrap(err, "seed posts")
	}
	if err := seedCampaigns(ctx, repository.NewCampaignRepository(pool)); err != nil {
		return errors.Wrap(err, "seed campaigns")
	}
	return nil
}

func seedAdmin(ctx context.Context, users user.Repository, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}

	err = users.Create(ctx, &user.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Admin",
		Language:     i18n.LangAR,
		Role:         user.RoleAdmin,
	})
	if errors.Is(err, user.ErrEmailTaken) {
		slog.Info("admin account already exists", slog.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("created admin account", slog.String("email", email))
	return nil
}

func seedPosts(ctx context.Context, posts blog.Repository) error {
	now := time.Now()
	seed := []blog.Post{
		{
			ID:      uuid.New().String(),
			Slug:    "how-to-price-your-product",
			TitleEN: "How to Price Your Product",
			TitleAR: "كيف تسعّر منتجك",
			BodyEN:  "Start from your unit cost, add fees, and decide the margin you need to stay profitable.",
			BodyAR:  "ابدأ من تكلفة الوحدة، أضف الرسوم، ثم حدد الهامش الذي تحتاجه لتبقى رابحًا.",
		},
		{
			ID:      uuid.New().String(),
			Slug:    "when-discounts-lose-money",
			TitleEN: "When Discounts Lose Money",
			TitleAR: "متى تخسر من التخفيضات",
			BodyEN:  "A 20% discount can wipe out your entire margin. Calculate the required sales uplift first.",
			BodyAR:  "خصم ٢٠٪ قد يمحو هامش ربحك بالكامل. احسب الزيادة المطلوبة في المبيعات أولًا.",
		},
	}

	for i := range seed {
		seed[i].Published = true
		seed[i].PublishedAt = &now

		err := posts.Create(ctx, &seed[i])
		if errors.Is(err, blog.ErrSlugTaken) {
			slog.Info("post already exists", slog.String("slug", seed[i].Slug))
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "create post %s", seed[i].Slug)
		}
		slog.Info("created post", slog.String("slug", seed[i].Slug))
	}
	return nil
}

func seedCampaigns(ctx context.Context, campaigns ad.Repository) error {
	existing, err := campaigns.Count(ctx)
	if err != nil {
		return errors.Wrap(err, "count campaigns")
	}
	if existing > 0 {
		slog.Info("campaigns already seeded", slog.Int64("count", existing))
		return nil
	}

	now := time.Now()
	c := &ad.Campaign{
		ID:                uuid.New().String(),
		Code:              "welcome234",
		Name:              "Launch campaign",
		TextEN:            "Ship faster with Mizan tools",
		TextAR:            "أنجز أسرع مع أدوات ميزان",
		TargetURL:         "https://example.com/landing",
		Placement:         "sidebar",
		StartsAt:          now,
		EndsAt:            now.AddDate(0, 1, 0),
		TotalBudget:       decimal.NewFromInt(50),
		CostPerImpression: decimal.RequireFromString("0.005"),
		CostPerClick:      decimal.RequireFromString("0.25"),
		Spend:             decimal.Zero,
		Status:            ad.StatusActive,
	}
	if err := campaigns.Create(ctx, c); err != nil {
		return errors.Wrap(err, "create campaign")
	}

	slog.Info("created campaign", slog.String("code", c.Code))
	return nil
}
