package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("默认配置应加载成功: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("期望默认端口 8080，实际=%d", cfg.Server.Port)
	}
	if cfg.Store.Driver != StoreDriverSQLite {
		t.Errorf("期望默认存储 sqlite，实际=%s", cfg.Store.Driver)
	}
	if cfg.Geofence.RadiusMeters != 200 {
		t.Errorf("期望默认半径 200，实际=%v", cfg.Geofence.RadiusMeters)
	}
	if cfg.Report.Locale != "ko" || cfg.Report.RecentLimit != 5 || cfg.Report.DateLimit != 7 {
		t.Errorf("报表默认值不符: %+v", cfg.Report)
	}
	if cfg.Seed.AdminUsername != "admin" {
		t.Errorf("期望根管理员 admin，实际=%s", cfg.Seed.AdminUsername)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
store:
  driver: redis
geofence:
  radius_meters: 50
report:
  locale: en
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望端口 9090，实际=%d", cfg.Server.Port)
	}
	if cfg.Store.Driver != StoreDriverRedis {
		t.Errorf("期望存储 redis，实际=%s", cfg.Store.Driver)
	}
	if cfg.Geofence.RadiusMeters != 50 {
		t.Errorf("期望半径 50，实际=%v", cfg.Geofence.RadiusMeters)
	}
	if cfg.Report.Locale != "en" {
		t.Errorf("期望 locale=en，实际=%s", cfg.Report.Locale)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ATTEND_SERVER_PORT", "7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("期望环境变量覆盖端口 7070，实际=%d", cfg.Server.Port)
	}
}

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Store:    StoreConfig{Driver: StoreDriverSQLite, SQLitePath: "x.db"},
		Geofence: GeofenceConfig{AnchorLatitude: 37.5, AnchorLongitude: 127, RadiusMeters: 100},
		Report:   ReportConfig{Locale: "ko"},
		Seed:     SeedConfig{AdminUsername: "admin", AdminPassword: "admin123", AdminName: "관리자"},
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("合法配置不应报错: %v", err)
	}

	cfg := validConfig()
	cfg.Server.Port = 0
	if cfg.Validate() == nil {
		t.Error("端口为 0 应报错")
	}

	cfg = validConfig()
	cfg.Store.Driver = "mongo"
	if cfg.Validate() == nil {
		t.Error("未知存储驱动应报错")
	}

	cfg = validConfig()
	cfg.Geofence.RadiusMeters = 0
	if cfg.Validate() == nil {
		t.Error("半径为 0 应报错")
	}

	cfg = validConfig()
	cfg.Geofence.AnchorLatitude = 91
	if cfg.Validate() == nil {
		t.Error("纬度越界应报错")
	}

	cfg = validConfig()
	cfg.Report.Locale = "fr"
	if cfg.Validate() == nil {
		t.Error("不支持的 locale 应报错")
	}

	cfg = validConfig()
	cfg.Seed.AdminPassword = ""
	if cfg.Validate() == nil {
		t.Error("根管理员密码为空应报错")
	}

	cfg = validConfig()
	cfg.RateLimit.Enabled = true
	if cfg.Validate() == nil {
		t.Error("启用限流但未配置 redis 应报错")
	}
}
