// Script backfill dữ liệu lead: chuẩn hóa lại normalizedPhone và tính lại
// cờ trùng lặp cho toàn bộ lead đang active. Chạy lại được, chỉ ghi khi có thay đổi.
//
// Chạy: go run ./cmd/backfill
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"noithat_leads/config"
	leadsvc "noithat_leads/internal/api/lead/service"
	"noithat_leads/internal/database"
	"noithat_leads/internal/global"
	"noithat_leads/internal/logger"
)

func main() {
	global.MongoDB_ColNames.Leads = "leads"
	global.MongoDB_ColNames.PhoneLocks = "lead_phone_locks"
	global.InitValidator()

	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		log.Fatal("Không đọc được cấu hình")
	}

	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		log.Fatalf("Không kết nối được MongoDB: %v", err)
	}
	defer database.CloseInstance(global.MongoDB_Session)
	defer logger.Close()

	db := global.MongoDB_Session.Database(global.MongoDB_ServerConfig.MongoDB_DBName_Data)
	for _, name := range []string{global.MongoDB_ColNames.Leads, global.MongoDB_ColNames.PhoneLocks} {
		if _, err := global.RegistryCollections.Register(name, db.Collection(name)); err != nil {
			log.Fatalf("Không đăng ký được collection %s: %v", name, err)
		}
	}

	svc, err := leadsvc.NewLeadService()
	if err != nil {
		log.Fatalf("Không khởi tạo được lead service: %v", err)
	}

	report, err := svc.Backfill(context.Background())
	if report != nil {
		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(out))
	}
	if err != nil {
		log.Fatalf("Backfill dừng giữa chừng: %v", err)
	}
	log.Println("Backfill hoàn tất")
}
