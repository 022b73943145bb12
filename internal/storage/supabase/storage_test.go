package supabase

import (
	"testing"

	"counseling-ai-backend/internal/config"
)

func TestNewStorageValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.SupabaseConfig
	}{
		{"MissingURL", config.SupabaseConfig{Key: "k", Bucket: "b"}},
		{"MissingKey", config.SupabaseConfig{URL: "https://x.supabase.co", Bucket: "b"}},
		{"MissingBucket", config.SupabaseConfig{URL: "https://x.supabase.co", Key: "k"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := NewStorage(c.cfg); err == nil {
				t.Error("NewStorage() error = nil, want error")
			}
		})
	}

	s, err := NewStorage(config.SupabaseConfig{URL: "https://x.supabase.co", Key: "k", Bucket: "videos"})
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	if s.bucket != "videos" {
		t.Errorf("bucket = %q, want videos", s.bucket)
	}
	// 未設定有效期時使用預設值
	if s.expirySecs != 3600 {
		t.Errorf("expirySecs = %d, want 3600", s.expirySecs)
	}
}

func TestObjectPath(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		path, err := objectPath("alice", "20250601-143005_video.mp4")
		if err != nil {
			t.Fatalf("objectPath() error = %v", err)
		}
		if path != "alice/20250601-143005_video.mp4" {
			t.Errorf("objectPath() = %q", path)
		}
	})

	t.Run("RejectsInvalid", func(t *testing.T) {
		cases := []struct {
			staff    string
			filename string
		}{
			{"", "v.mp4"},
			{"alice", ""},
			{"..", "v.mp4"},
			{"alice", "../secret.mp4"},
			{"a/b", "v.mp4"},
			{"alice", "a\\b.mp4"},
		}
		for _, c := range cases {
			if _, err := objectPath(c.staff, c.filename); err == nil {
				t.Errorf("objectPath(%q, %q) error = nil, want error", c.staff, c.filename)
			}
		}
	})
}

func TestObjectMetadataHelpers(t *testing.T) {
	meta := map[string]interface{}{
		// 列表 API 回傳的 JSON 數字解碼為 float64
		"size":     float64(1048576),
		"mimetype": "video/mp4",
	}

	if got := objectSize(meta); got != 1048576 {
		t.Errorf("objectSize() = %d, want 1048576", got)
	}
	if got := objectMime(meta); got != "video/mp4" {
		t.Errorf("objectMime() = %q, want video/mp4", got)
	}

	if got := objectSize(nil); got != 0 {
		t.Errorf("objectSize(nil) = %d, want 0", got)
	}
	if got := objectMime(nil); got != "" {
		t.Errorf("objectMime(nil) = %q, want empty", got)
	}
	if got := objectSize(map[string]interface{}{"size": "not a number"}); got != 0 {
		t.Errorf("objectSize(bad type) = %d, want 0", got)
	}
}
