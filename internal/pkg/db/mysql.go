// internal/pkg/db/mysql.go
package db

import (
	"fmt"
	"time"

	gosqlmysql "github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Options 描述一个 MySQL 连接所需的全部参数。
type Options struct {
	Addr     string
	User     string
	Password string
	Database string
}

// Open 建立一个带连接池配置的 GORM 连接。
// DSN 通过 go-sql-driver 的 Config 构造, 避免手拼字符串遗漏参数。
func Open(opts Options) (*gorm.DB, error) {
	dsnCfg := gosqlmysql.NewConfig()
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = opts.Addr
	dsnCfg.User = opts.User
	dsnCfg.Passwd = opts.Password
	dsnCfg.DBName = opts.Database
	dsnCfg.ParseTime = true
	dsnCfg.Loc = time.UTC
	dsnCfg.Params = map[string]string{"charset": "utf8mb4"}

	gdb, err := gorm.Open(gormmysql.Open(dsnCfg.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql at %s: %w", opts.Addr, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return gdb, nil
}
