package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/servswap/servswap_go_server/config"
	"github.com/servswap/servswap_go_server/internal/model"
)

var (
	dryRun        = flag.Bool("dry-run", true, "Dry run mode, don't actually delete rows")
	retentionDays = flag.Int("retention-days", 0, "Days to keep read notifications (0 = use config)")
)

func main() {
	flag.Parse()

	log.Println("🧹 Starting notification cleanup...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	days := *retentionDays
	if days <= 0 {
		days = cfg.Notification.RetentionDays
	}
	if days <= 0 {
		days = 30
	}

	// 连接数据库
	db, err := connectDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	before := time.Now().AddDate(0, 0, -days)
	log.Printf("Pruning read notifications created before %s (%d days)", before.Format("2006-01-02"), days)

	var candidates int64
	err = db.Model(&model.Notification{}).
		Where("is_read = ? AND created_at < ?", true, before).
		Count(&candidates).Error
	if err != nil {
		log.Fatalf("Failed to count notifications: %v", err)
	}
	log.Printf("Found %d read notifications to prune", candidates)

	if *dryRun {
		log.Println("⚠️  DRY RUN MODE - No rows were actually deleted")
		log.Println("   Run with -dry-run=false to actually delete rows")
		return
	}

	result := db.Where("is_read = ? AND created_at < ?", true, before).
		Delete(&model.Notification{})
	if result.Error != nil {
		log.Fatalf("Failed to delete notifications: %v", result.Error)
	}

	log.Printf("✅ Deleted %d notifications", result.RowsAffected)
}

// connectDB 连接数据库
func connectDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
