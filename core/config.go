package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug    bool
	TestMode bool
	Env      string
	Build    string
	AppName  string

	SecretKey    string
	RollbarToken string

	Server struct {
		Host               string
		Addr               string
		DebugAddr          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	Store struct {
		ProjectID       string
		CredentialsFile string
		Collection      string
		WriteTimeout    time.Duration
	}

	Auth struct {
		WebAPIKey string

		// dummy backend credentials, DEV only
		DummyEmail    string
		DummyPassword string
	}

	Gemini struct {
		APIKey  string
		Model   string
		Timeout time.Duration
	}

	Noembed struct {
		BaseURL string
		Timeout time.Duration
	}
}

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "VlogValidator")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "h2(h!x)#*c2(#yg4h^$cegm2emy-poq5-wer)enb$+57=dz&uox")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", "0.0.0.0:8000")
	v.SetDefault("serverDebugAddr", "0.0.0.0:4000")
	v.SetDefault("shutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 12*time.Hour)
	v.SetDefault("storeCollection", "submissions")
	v.SetDefault("storeWriteTimeout", 30*time.Second)
	v.SetDefault("geminiModel", "gemini-2.5-flash")
	v.SetDefault("geminiTimeout", 15*time.Second)
	v.SetDefault("noembedBaseURL", "https://noembed.com/embed")
	v.SetDefault("noembedTimeout", 5*time.Second)
	v.SetDefault("authDummyEmail", "guru@sekolah.id")
	v.SetDefault("authDummyPassword", "rahasia123")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
	}
	conf.Server.Host = v.GetString("serverHost")
	conf.Server.Addr = v.GetString("serverAddr")
	conf.Server.DebugAddr = v.GetString("serverDebugAddr")
	conf.Server.ShutdownTimeout = v.GetDuration("shutdownTimeout")
	conf.Server.JWTExpirationDelta = v.GetDuration("jwtExpirationDelta")
	conf.Store.ProjectID = v.GetString("storeProjectID")
	conf.Store.CredentialsFile = v.GetString("storeCredentialsFile")
	conf.Store.Collection = v.GetString("storeCollection")
	conf.Store.WriteTimeout = v.GetDuration("storeWriteTimeout")
	conf.Auth.WebAPIKey = v.GetString("authWebAPIKey")
	conf.Auth.DummyEmail = v.GetString("authDummyEmail")
	conf.Auth.DummyPassword = v.GetString("authDummyPassword")
	conf.Gemini.APIKey = v.GetString("geminiAPIKey")
	conf.Gemini.Model = v.GetString("geminiModel")
	conf.Gemini.Timeout = v.GetDuration("geminiTimeout")
	conf.Noembed.BaseURL = v.GetString("noembedBaseURL")
	conf.Noembed.Timeout = v.GetDuration("noembedTimeout")
	return conf
}
