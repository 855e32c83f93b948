// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"

	"github.com/Annany2002/jobboard-backend/internal/logger"
)

var (
	customLog = logger.Named("config")

	userModelRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*\.[A-Za-z][A-Za-z0-9_]*$`)
)

// Profile selects a settings variant.
type Profile string

const (
	ProfileProduction  Profile = "production"
	ProfileDevelopment Profile = "development"

	// BaseDirEnv overrides the directory used to locate env files and the database.
	BaseDirEnv = "APP_BASE_DIR"

	// ApplicationsScope is the throttle scope for job applications.
	ApplicationsScope = "applications"

	developmentAccessTokenLifetime = 30 * time.Minute
)

// Config is the process-wide configuration. It is built once at startup and
// must be treated as read-only afterwards.
type Config struct {
	BaseDir      string   `validate:"required"`
	Profile      Profile  `env:"APP_ENV" envDefault:"production" validate:"oneof=production development"`
	SecretKey    string   `validate:"required"`
	Debug        bool     `env:"DEBUG" envDefault:"false"`
	AllowedHosts []string `env:"ALLOWED_HOSTS" envDefault:"127.0.0.1,localhost" envSeparator:"," validate:"dive,required"`

	Admin    AdminConfig
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Email    EmailConfig
	REST     RESTConfig
	JWT      JWTConfig
	Logging  LoggingConfig
}

// AdminConfig holds the titles shown by admin front-ends.
type AdminConfig struct {
	SiteTitle  string `env:"ADMIN_SITE_TITLE" envDefault:"Job Board Admin Panel"`
	IndexTitle string `env:"ADMIN_INDEX_TITLE" envDefault:"Jhapson Administration"`
}

type ServerConfig struct {
	Port               string        `env:"SERVER_PORT" envDefault:"8080" validate:"required,numeric"`
	ReadTimeout        time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout       time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

type DatabaseConfig struct {
	// Name is the sqlite file; relative paths are resolved against BaseDir.
	Name string `env:"DATABASE_NAME" envDefault:"db.sqlite3" validate:"required"`
}

type AuthConfig struct {
	// UserModel is an "app.Model" label; it names the users table.
	UserModel         string `env:"AUTH_USER_MODEL" envDefault:"auth.User" validate:"required"`
	PasswordMinLength int    `env:"PASSWORD_MIN_LENGTH" envDefault:"8" validate:"gte=1"`
}

type EmailConfig struct {
	DefaultFrom   string `env:"DEFAULT_FROM_EMAIL" envDefault:"noreply@example.com" validate:"required,email"`
	SubjectPrefix string `env:"EMAIL_SUBJECT_PREFIX" envDefault:"[Job Board] "`
	Backend       string `env:"EMAIL_BACKEND" envDefault:"smtp" validate:"oneof=smtp console memory"`
	Host          string `env:"EMAIL_HOST" envDefault:"localhost"`
	Port          int    `env:"EMAIL_PORT" envDefault:"25" validate:"gte=1,lte=65535"`
	HostUser      string `env:"EMAIL_HOST_USER"`
	HostPassword  string `env:"EMAIL_HOST_PASSWORD"`
}

type RESTConfig struct {
	PageSize int `env:"PAGE_SIZE" envDefault:"20" validate:"gte=1,lte=1000"`
	Throttle ThrottleConfig
}

type ThrottleConfig struct {
	Anon         Rate `env:"THROTTLE_ANON_RATE" envDefault:"100/day"`
	User         Rate `env:"THROTTLE_USER_RATE" envDefault:"1000/day"`
	Applications Rate `env:"THROTTLE_APPLICATIONS_RATE" envDefault:"10/day"`
}

// Scope returns the rate configured for a named throttle scope.
func (t ThrottleConfig) Scope(name string) (Rate, bool) {
	switch name {
	case ApplicationsScope:
		return t.Applications, true
	}
	return Rate{}, false
}

type JWTConfig struct {
	AccessTokenLifetime    time.Duration `env:"JWT_ACCESS_TOKEN_LIFETIME" envDefault:"20m" validate:"gt=0"`
	RefreshTokenLifetime   time.Duration `env:"JWT_REFRESH_TOKEN_LIFETIME" envDefault:"336h" validate:"gt=0"`
	RotateRefreshTokens    bool          `env:"JWT_ROTATE_REFRESH_TOKENS" envDefault:"true"`
	BlacklistAfterRotation bool          `env:"JWT_BLACKLIST_AFTER_ROTATION" envDefault:"true"`
	AuthHeaderTypes        []string      `env:"JWT_AUTH_HEADER_TYPES" envDefault:"Bearer" envSeparator:"," validate:"min=1,dive,required"`
	Issuer                 string        `env:"JWT_ISSUER" envDefault:"jobboard-backend"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `env:"LOG_FORMAT" envDefault:"verbose" validate:"oneof=verbose json text"`
}

// Load builds the configuration from the process environment. The base
// directory is APP_BASE_DIR when set, the working directory otherwise.
func Load() (*Config, error) {
	baseDir := os.Getenv(BaseDirEnv)
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("%w: cannot determine base directory: %v", ErrImproperlyConfigured, err)
		}
		baseDir = wd
	}
	return LoadFrom(baseDir, os.Environ())
}

// LoadFrom builds the configuration from environ and the env files around
// baseDir: defaults, then the secondary file, the primary file and finally
// environ, each taking precedence over the previous one. The result depends
// only on those inputs.
func LoadFrom(baseDir string, environ []string) (*Config, error) {
	customLog.Info("Loading configuration from environment variables...")

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base directory %q: %v", ErrImproperlyConfigured, baseDir, err)
	}

	environment, err := LoadEnvironment(absBase, environ)
	if err != nil {
		return nil, err
	}

	secret, err := LoadSecretKey(environment.Lookup)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	opts := env.Options{
		Environment: environment.Map(),
		FuncMap:     map[reflect.Type]env.ParserFunc{reflect.TypeOf(false): parseFlag},
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImproperlyConfigured, err)
	}
	cfg.BaseDir = absBase
	cfg.SecretKey = secret
	cfg.AllowedHosts = cleanList(cfg.AllowedHosts)
	cfg.Server.CORSAllowedOrigins = cleanList(cfg.Server.CORSAllowedOrigins)
	cfg.JWT.AuthHeaderTypes = cleanList(cfg.JWT.AuthHeaderTypes)

	// The policy sees DEBUG as set in the environment, not the profile override.
	if err := CheckSecretKeyPolicy(cfg.SecretKey, cfg.Debug); err != nil {
		return nil, err
	}

	if cfg.Profile == ProfileDevelopment {
		applyDevelopment(cfg, environment)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	customLog.Infof("Configuration loaded successfully. Profile: %s, Debug: %t, Port: %s", cfg.Profile, cfg.Debug, cfg.Server.Port)
	return cfg, nil
}

// applyDevelopment mirrors the local development settings variant.
func applyDevelopment(cfg *Config, environment Environment) {
	cfg.Debug = true
	cfg.AllowedHosts = []string{"127.0.0.1", "localhost"}
	cfg.Email.Backend = "console"
	if !environment.IsSet("JWT_ACCESS_TOKEN_LIFETIME") {
		cfg.JWT.AccessTokenLifetime = developmentAccessTokenLifetime
	}
}

// Validate checks field constraints. Every failure wraps ErrImproperlyConfigured.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrImproperlyConfigured, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrImproperlyConfigured, err)
	}

	if !userModelRegex.MatchString(c.Auth.UserModel) {
		return fmt.Errorf("%w: AUTH_USER_MODEL must be of the form 'app_label.ModelName', got %q", ErrImproperlyConfigured, c.Auth.UserModel)
	}

	for name, rate := range map[string]Rate{"anon": c.REST.Throttle.Anon, "user": c.REST.Throttle.User, ApplicationsScope: c.REST.Throttle.Applications} {
		if rate.Requests <= 0 || rate.Period <= 0 {
			return fmt.Errorf("%w: throttle rate %q is not set", ErrImproperlyConfigured, name)
		}
	}
	return nil
}

// DatabasePath is the absolute sqlite file path.
func (c *Config) DatabasePath() string {
	if filepath.IsAbs(c.Database.Name) {
		return c.Database.Name
	}
	return filepath.Join(c.BaseDir, c.Database.Name)
}

// UserTable is the table derived from AUTH_USER_MODEL, e.g. "auth.User" -> "auth_user".
func (c *Config) UserTable() string {
	return strings.ToLower(strings.ReplaceAll(c.Auth.UserModel, ".", "_"))
}

var truthyFlags = map[string]bool{"true": true, "on": true, "ok": true, "y": true, "yes": true, "1": true}

// parseFlag reads boolean settings: integers are true when non-zero, other
// values when they are one of truthyFlags. Anything else is false.
func parseFlag(value string) (any, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if n, err := strconv.Atoi(value); err == nil {
		return n != 0, nil
	}
	return truthyFlags[value], nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
