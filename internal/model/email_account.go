package model

// EmailAccount is an SMTP identity a reminder level sends from.
type EmailAccount struct {
	Base
	Email       string `json:"email" db:"email"`
	DisplayName string `json:"display_name" db:"display_name"`
	Host        string `json:"host" db:"host"`
	Port        int    `json:"port" db:"port"`
	Username    string `json:"username" db:"username"`
	Password    string `json:"-" db:"password"`
	UseTLS      bool   `json:"use_tls" db:"use_tls"`
}
