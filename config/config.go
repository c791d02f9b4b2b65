package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jasonroy7dct/mailbag-server/models"
)

var (
	DB        *gorm.DB
	AppConfig Config
)

// MailServer describes one upstream mail endpoint (IMAP or SMTP).
type MailServer struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Username   string `json:"username"`
	Password   string `json:"-"`
	Encryption string `json:"encryption"` // SSL, STARTTLS or NONE
}

type Config struct {
	Environment  string     `json:"environment"`
	ServerPort   string     `json:"server_port"`
	IMAP         MailServer `json:"imap"`
	SMTP         MailServer `json:"smtp"`
	UserEmail    string     `json:"user_email"`
	TrashMailbox string     `json:"trash_mailbox"`
	ContactsDB   string     `json:"contacts_db"`
	ClientDir    string     `json:"client_dir"`
	SentryDSN    string     `json:"-"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
}

func LoadConfig() error {
	AppConfig = Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		IMAP: MailServer{
			Host:       getEnv("IMAP_HOST", ""),
			Port:       getEnvAsInt("IMAP_PORT", 993),
			Username:   getEnv("IMAP_USERNAME", ""),
			Password:   getEnv("IMAP_PASSWORD", ""),
			Encryption: getEnv("IMAP_ENCRYPTION", "SSL"),
		},
		SMTP: MailServer{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Username:   getEnv("SMTP_USERNAME", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			Encryption: getEnv("SMTP_ENCRYPTION", "STARTTLS"),
		},
		UserEmail:    getEnv("USER_EMAIL", ""),
		TrashMailbox: getEnv("TRASH_MAILBOX", "Deleted"),
		ContactsDB:   getEnv("CONTACTS_DB", "contacts.db"),
		ClientDir:    getEnv("CLIENT_DIR", "./public"),
		SentryDSN:    getEnv("SENTRY_DSN", ""),
	}

	// Validate required configurations
	if AppConfig.IMAP.Host == "" {
		return fmt.Errorf("IMAP_HOST is required")
	}
	if AppConfig.IMAP.Username == "" || AppConfig.IMAP.Password == "" {
		return fmt.Errorf("IMAP_USERNAME and IMAP_PASSWORD are required")
	}
	if AppConfig.SMTP.Host == "" {
		return fmt.Errorf("SMTP_HOST is required")
	}
	if AppConfig.UserEmail == "" {
		return fmt.Errorf("USER_EMAIL is required")
	}

	logConfig()
	return nil
}

// ConnectDB opens the local contacts database file and migrates the schema.
func ConnectDB() error {
	log.Printf("Opening contacts store at %s...", AppConfig.ContactsDB)

	var err error
	DB, err = gorm.Open(sqlite.Open(AppConfig.ContactsDB), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to open contacts store: %w", err)
	}

	if err := DB.AutoMigrate(&models.Contact{}); err != nil {
		return fmt.Errorf("contacts store migration failed: %w", err)
	}

	log.Println("✅ Contacts store ready")
	return nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return fallback
	}
	return value
}

func logConfig() {
	log.Println("🔧 Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	log.Printf("IMAP: %s@%s:%d (%s)",
		AppConfig.IMAP.Username,
		AppConfig.IMAP.Host,
		AppConfig.IMAP.Port,
		AppConfig.IMAP.Encryption)
	log.Printf("SMTP: %s@%s:%d (%s)",
		AppConfig.SMTP.Username,
		AppConfig.SMTP.Host,
		AppConfig.SMTP.Port,
		AppConfig.SMTP.Encryption)
	log.Printf("Trash mailbox: %s", AppConfig.TrashMailbox)
}
