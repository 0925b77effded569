package models

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/campsum/campsum-api/internal/apperror"
	"github.com/go-playground/validator/v10"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names so error messages match request fields.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// SupabaseRepo talks to the managed backend. Table access goes through the
// service-role client; auth calls use the anon key like a browser would.
type SupabaseRepo struct {
	db         *supabase.Client
	auth       gotrue.Client
	admin      gotrue.Client
	url        string
	anonKey    string
	serviceKey string
}

func SupabaseNewRepo(db *supabase.Client, url, anonKey, serviceKey string) *SupabaseRepo {
	authURL := strings.TrimRight(url, "/") + supabase.AUTH_URL
	return &SupabaseRepo{
		db:         db,
		auth:       gotrue.New("", anonKey).WithCustomGoTrueURL(authURL),
		admin:      gotrue.New("", serviceKey).WithCustomGoTrueURL(authURL).WithToken(serviceKey),
		url:        strings.TrimRight(url, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
	}
}

// restAs returns a PostgREST client acting as the owner of accessToken, so
// row level security and auth.uid() apply.
func (su *SupabaseRepo) restAs(accessToken string) *postgrest.Client {
	return postgrest.NewClient(su.url+supabase.REST_URL, "public", map[string]string{
		"apikey":        su.anonKey,
		"Authorization": "Bearer " + accessToken,
	})
}

// pgError classifies PostgREST failures, which the client reports as
// "(code) message".
func pgError(op string, err error) error {
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "(PGRST116)"):
		return fmt.Errorf("%s: %w", op, apperror.ErrNotFound)
	case strings.HasPrefix(msg, "(23505)"):
		return fmt.Errorf("%s: %w", op, apperror.ErrConflict)
	case strings.HasPrefix(msg, "(22P02)"), strings.HasPrefix(msg, "(23502)"), strings.HasPrefix(msg, "(23503)"), strings.HasPrefix(msg, "(23514)"):
		return fmt.Errorf("%s: %w: %s", op, apperror.ErrInvalidInput, msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

func (mdb *MongodbRepo) GetCollection(colName string) (*mongo.Collection, error) {
	if mdb == nil || mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(colName), nil
}
