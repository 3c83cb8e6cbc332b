package model

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"not null;uniqueIndex;type:varchar(150)" json:"username"`
	PasswordHash string `gorm:"not null;type:varchar(100)" json:"-"`
	Email        string `gorm:"type:varchar(254)" json:"email"`
	BaseModel
}

type Address struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"not null;index" json:"user"`
	Street    string `gorm:"not null;type:varchar(200)" json:"street"`
	City      string `gorm:"not null;type:varchar(100)" json:"city"`
	State     string `gorm:"not null;type:varchar(100)" json:"state"`
	ZipCode   string `gorm:"not null;type:varchar(20)" json:"zip_code"`
	Country   string `gorm:"not null;type:varchar(100);default:Nepal" json:"country"`
	IsDefault bool   `gorm:"not null;default:false" json:"is_default"`
}
