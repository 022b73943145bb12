package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 結構：應用程式全部設定
type Config struct {
	AppName   string          `mapstructure:"appName"`
	Server    ServerConfig    `mapstructure:"server"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Database  DatabaseConfig  `mapstructure:"database"`
	OpenAI    OpenAIConfig    `mapstructure:"openAI"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Prompts   PromptConfig    `mapstructure:"prompts"`
	Tasks     TaskConfig      `mapstructure:"tasks"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// SupabaseConfig：Storage 桶連線設定
type SupabaseConfig struct {
	URL                 string `mapstructure:"url"`
	Key                 string `mapstructure:"key"`
	Bucket              string `mapstructure:"bucket"`
	SignedURLExpirySecs int    `mapstructure:"signedURLExpirySecs"`
}

// DatabaseConfig：Supabase 後端即 PostgreSQL
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbName"`
	SSLMode  string `mapstructure:"sslMode"`
}

// DSN 回傳 pgx 連線字串。
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// MigrateURL 回傳 golang-migrate 使用的 pgx5 scheme URL。
func (d DatabaseConfig) MigrateURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

type OpenAIConfig struct {
	APIKey          string `mapstructure:"apiKey"`
	BaseURL         string `mapstructure:"baseURL"`
	TranscribeModel string `mapstructure:"transcribeModel"`
	ChatModel       string `mapstructure:"chatModel"`
}

// UploadConfig：上傳驗證規則
type UploadConfig struct {
	MaxSizeMB         int64    `mapstructure:"maxSizeMB"`
	AllowedExtensions []string `mapstructure:"allowedExtensions"`
}

// PromptConfig：外部 Prompt 檔案路徑（Markdown，支援熱更新）
type PromptConfig struct {
	AnalyzePath       string `mapstructure:"analyzePath"`
	MergePath         string `mapstructure:"mergePath"`
	CompanyValuesPath string `mapstructure:"companyValuesPath"`
	EducationPlanPath string `mapstructure:"educationPlanPath"`
	Version           string `mapstructure:"version"`
}

// TaskConfig：分析任務註冊表設定
type TaskConfig struct {
	RetentionMinutes int `mapstructure:"retentionMinutes"`
}

type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	AnalyzeCronSpec string `mapstructure:"analyzeCronSpec"`
	CleanupCronSpec string `mapstructure:"cleanupCronSpec"`
}

// Load 讀取設定檔，環境變數可覆寫（例如 SUPABASE_KEY 覆寫 supabase.key）。
func Load(configPath string, configName string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(configPath)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 設定預設值
	v.SetDefault("appName", "Counseling-AI-Backend")
	v.SetDefault("server.port", 8080)
	v.SetDefault("supabase.bucket", "videos")
	v.SetDefault("supabase.signedURLExpirySecs", 3600)
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("openAI.transcribeModel", "whisper-1")
	v.SetDefault("openAI.chatModel", "gpt-4o-mini")
	v.SetDefault("upload.maxSizeMB", 500)
	v.SetDefault("upload.allowedExtensions", []string{".mp4", ".mov", ".webm", ".m4a", ".mp3"})
	v.SetDefault("prompts.analyzePath", "prompts/analyze_system_prompt.md")
	v.SetDefault("prompts.mergePath", "prompts/merge_system_prompt.md")
	v.SetDefault("prompts.companyValuesPath", "prompts/company_values.md")
	v.SetDefault("prompts.educationPlanPath", "prompts/education_plan.md")
	v.SetDefault("prompts.version", "v1")
	v.SetDefault("tasks.retentionMinutes", 30)
	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.analyzeCronSpec", "0 0 * * * *")
	v.SetDefault("scheduler.cleanupCronSpec", "0 */10 * * * *")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("警告：找不到設定檔，將使用預設值和環境變數。")
		} else {
			return nil, fmt.Errorf("讀取設定檔時發生錯誤: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("無法解析設定檔到結構: %w", err)
	}

	if cfg.Supabase.URL == "" || cfg.Supabase.Key == "" {
		fmt.Println("警告：Supabase URL 或 Key 未設定！")
	}
	if cfg.OpenAI.APIKey == "" {
		fmt.Println("警告：OpenAI API Key 未設定！")
	}

	fmt.Println("資訊：設定載入成功。")
	return &cfg, nil
}
