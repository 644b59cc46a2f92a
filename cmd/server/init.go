package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"noithat_leads/config"
	leadmodels "noithat_leads/internal/api/lead/models"
	"noithat_leads/internal/database"
	"noithat_leads/internal/global"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo tên các collection trong database
func initColNames() {
	global.MongoDB_ColNames.Leads = "leads"
	global.MongoDB_ColNames.PhoneLocks = "lead_phone_locks"

	logrus.Info("Initialized collection names") // Ghi log thông báo đã khởi tạo tên các collection
}

// Hàm khởi tạo validator (dùng global.InitValidator để đăng ký custom validators: no_xss, lead_source, lead_status)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator") // Ghi log thông báo đã khởi tạo validator
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	global.MongoDB_ServerConfig = config.NewConfig()
	if global.MongoDB_ServerConfig == nil {
		logrus.Fatalf("Failed to initialize config: config is nil") // Ghi log lỗi nếu khởi tạo cấu hình thất bại
	}
	logrus.Info("Initialized server config") // Ghi log thông báo đã khởi tạo cấu hình server
}

// Hàm khởi tạo kết nối database
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err) // Ghi log lỗi nếu kết nối database thất bại
	}
	logrus.Info("Connected to MongoDB") // Ghi log thông báo đã kết nối database thành công

	// Khởi tạo các db và collections nếu chưa có
	database.EnsureDatabaseAndCollections(global.MongoDB_Session)
	logrus.Info("Ensured database and collections")
}

// InitIndexes khởi tạo index cho các collection theo tag trong model
// và các compound index đặc thù cho truy vấn lead.
func InitIndexes() {
	db := global.MongoDB_Session.Database(global.MongoDB_ServerConfig.MongoDB_DBName_Data)
	leadCol := db.Collection(global.MongoDB_ColNames.Leads)

	if err := database.CreateIndexes(context.TODO(), leadCol, leadmodels.Lead{}); err != nil {
		logrus.Fatalf("Failed to create lead model indexes: %v", err)
	}
	if err := database.CreateLeadAdditionalIndexes(context.TODO(), db); err != nil {
		logrus.Fatalf("Failed to create lead indexes: %v", err)
	}
	logrus.Info("Created lead indexes")
}
