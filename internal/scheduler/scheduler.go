package scheduler

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"counseling-ai-backend/internal/services"
)

// Scheduler 包裝 cron 實例與已註冊的排程任務
type Scheduler struct {
	cron       *cron.Cron
	backlogJob *BacklogJob
	cleanupJob *CleanupJob
}

// NewScheduler 依設定檔的 Cron 表達式註冊排程任務
func NewScheduler(
	as *services.AnalyzeService,
	backlogCronSpec string,
	cleanupCronSpec string,
) *Scheduler {
	c := cron.New(cron.WithSeconds())

	backlogJob := NewBacklogJob(as)
	cleanupJob := NewCleanupJob(as)

	if backlogCronSpec != "" {
		_, err := c.AddJob(backlogCronSpec, backlogJob)
		if err != nil {
			log.Fatalf("錯誤：無法新增未分析影片掃描任務到排程器 (spec: %s): %v", backlogCronSpec, err)
		}
		log.Printf("資訊：未分析影片掃描任務已註冊，排程：%s\n", backlogCronSpec)
	} else {
		log.Println("警告：未提供影片掃描任務的 Cron 表達式，該任務將不會被排程。")
	}

	if cleanupCronSpec != "" {
		_, err := c.AddJob(cleanupCronSpec, cleanupJob)
		if err != nil {
			log.Fatalf("錯誤：無法新增任務清理任務到排程器 (spec: %s): %v", cleanupCronSpec, err)
		}
		log.Printf("資訊：任務清理任務已註冊，排程：%s\n", cleanupCronSpec)
	} else {
		log.Println("警告：未提供任務清理的 Cron 表達式，該任務將不會被排程。")
	}

	return &Scheduler{
		cron:       c,
		backlogJob: backlogJob,
		cleanupJob: cleanupJob,
	}
}

// Start 非阻塞啟動排程器
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("資訊：排程器已非阻塞啟動 (如果任務已註冊)。")
}

// Stop 優雅停止排程器，等待運行中任務完成
func (s *Scheduler) Stop() {
	log.Println("資訊：正在停止排程器...")
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		log.Println("資訊：排程器已優雅停止，所有運行中任務已完成。")
	case <-time.After(10 * time.Second):
		log.Println("警告：排程器停止超時，可能仍有任務在執行。")
	}
}
