package global

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/go-playground/validator/v10"

	"noithat_leads/config"
	"noithat_leads/internal/registry"
)

// MongoDB_Lead_CollectionName chứa tên các collection trong MongoDB
type MongoDB_Lead_CollectionName struct {
	Leads      string // Tên collection cho lead
	PhoneLocks string // Tên collection khóa theo nhóm số điện thoại
}

// Các biến toàn cục
var Validate *validator.Validate                                                     // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                                                    // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration                                       // Cấu hình của server
var MongoDB_ColNames MongoDB_Lead_CollectionName = *new(MongoDB_Lead_CollectionName) // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
var RegistryDatabase = registry.NewRegistry[*mongo.Database]()      // Registry chứa các databases
