package config

// CSVSourceConfig contains configuration for CSV source connectors
type CSVSourceConfig struct {
	Path      string `yaml:"path" json:"path" required:"true"`
	Delimiter string `yaml:"delimiter" json:"delimiter" default:","`
	// Compression of the file; empty detects it from the extension
	Compression string   `yaml:"compression" json:"compression"`
	HasHeader   bool     `yaml:"has_header" json:"has_header" default:"true"`
	NullValues  []string `yaml:"null_values" json:"null_values"`
	TrimSpaces  bool     `yaml:"trim_spaces" json:"trim_spaces" default:"true"`
	// InferTypes converts integer, float and boolean looking cells
	InferTypes bool `yaml:"infer_types" json:"infer_types" default:"false"`
	// Sheet, when set, is recorded in _sheet_name for every row
	Sheet string `yaml:"sheet" json:"sheet"`
}

// DefaultCSVSourceConfig returns the CSV source defaults
func DefaultCSVSourceConfig() CSVSourceConfig {
	return CSVSourceConfig{Delimiter: ",", HasHeader: true, TrimSpaces: true}
}

// CSVDestinationConfig contains configuration for CSV destination connectors
type CSVDestinationConfig struct {
	Path        string `yaml:"path" json:"path" required:"true"`
	Delimiter   string `yaml:"delimiter" json:"delimiter" default:","`
	WriteHeader bool   `yaml:"write_header" json:"write_header" default:"true"`
	Compression string `yaml:"compression" json:"compression" default:"none"`
	CreateDirs  bool   `yaml:"create_dirs" json:"create_dirs" default:"true"`
}

// DefaultCSVDestinationConfig returns the CSV destination defaults
func DefaultCSVDestinationConfig() CSVDestinationConfig {
	return CSVDestinationConfig{Delimiter: ",", WriteHeader: true, Compression: "none", CreateDirs: true}
}

// JSONSourceConfig contains configuration for JSON source connectors
type JSONSourceConfig struct {
	Path string `yaml:"path" json:"path" required:"true"`
	// Format is "array" (a single JSON array) or "lines" (one object per line)
	Format      string `yaml:"format" json:"format" default:"array"`
	Compression string `yaml:"compression" json:"compression"`
}

// DefaultJSONSourceConfig returns the JSON source defaults
func DefaultJSONSourceConfig() JSONSourceConfig {
	return JSONSourceConfig{Format: "array"}
}

// JSONDestinationConfig contains configuration for JSON destination connectors
type JSONDestinationConfig struct {
	Path        string `yaml:"path" json:"path" required:"true"`
	Format      string `yaml:"format" json:"format" default:"array"`
	Compression string `yaml:"compression" json:"compression" default:"none"`
	CreateDirs  bool   `yaml:"create_dirs" json:"create_dirs" default:"true"`
}

// DefaultJSONDestinationConfig returns the JSON destination defaults
func DefaultJSONDestinationConfig() JSONDestinationConfig {
	return JSONDestinationConfig{Format: "array", Compression: "none", CreateDirs: true}
}

// SQLSourceConfig contains configuration for relational sources
type SQLSourceConfig struct {
	// Driver is "postgres", "mysql" or "sqlite"
	Driver string `yaml:"driver" json:"driver" required:"true"`
	DSN    string `yaml:"dsn" json:"dsn" required:"true"`
	// Exactly one of Table and Query is set
	Table string `yaml:"table" json:"table"`
	Query string `yaml:"query" json:"query"`
}

// SQLDestinationConfig contains configuration for relational destinations
type SQLDestinationConfig struct {
	Driver      string `yaml:"driver" json:"driver" required:"true"`
	DSN         string `yaml:"dsn" json:"dsn" required:"true"`
	Table       string `yaml:"table" json:"table" required:"true"`
	BatchSize   int    `yaml:"batch_size" json:"batch_size" default:"500"`
	CreateTable bool   `yaml:"create_table" json:"create_table" default:"true"`
	Truncate    bool   `yaml:"truncate" json:"truncate" default:"false"`
}

// DefaultSQLDestinationConfig returns the SQL destination defaults
func DefaultSQLDestinationConfig() SQLDestinationConfig {
	return SQLDestinationConfig{BatchSize: 500, CreateTable: true}
}

// GoogleSheetsConfig contains configuration for Google Sheets sources and
// destinations
type GoogleSheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id" json:"spreadsheet_id" required:"true"`
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
	// Sheets lists tabs to read; empty reads every tab
	Sheets []string `yaml:"sheets" json:"sheets"`
	// ExcludeSheets lists tabs skipped when every tab is read
	ExcludeSheets []string `yaml:"exclude_sheets" json:"exclude_sheets"`
	// AddSheetColumn tags every row with its tab in _sheet_name
	AddSheetColumn bool `yaml:"add_sheet_column" json:"add_sheet_column" default:"true"`
	// Sheet is the tab a destination writes to
	Sheet string `yaml:"sheet" json:"sheet" default:"Sheet1"`
	// Endpoint overrides the API base URL
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	// RequestsPerMinute throttles API calls; zero disables throttling
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute" default:"60"`
	// MaxRetries bounds retries of throttled (429) and 5xx responses
	MaxRetries int `yaml:"max_retries" json:"max_retries" default:"3"`
}

// DefaultGoogleSheetsConfig returns the Google Sheets defaults
func DefaultGoogleSheetsConfig() GoogleSheetsConfig {
	return GoogleSheetsConfig{Sheet: "Sheet1", AddSheetColumn: true, RequestsPerMinute: 60, MaxRetries: 3}
}

// MongoDBSourceConfig contains configuration for MongoDB sources
type MongoDBSourceConfig struct {
	URI        string `yaml:"uri" json:"uri" required:"true"`
	Database   string `yaml:"database" json:"database" required:"true"`
	Collection string `yaml:"collection" json:"collection" required:"true"`
	// Filter is an extended JSON query document
	Filter string `yaml:"filter" json:"filter"`
	Limit  int64  `yaml:"limit" json:"limit"`
}

// AvroDestinationConfig contains configuration for Avro OCF destinations
type AvroDestinationConfig struct {
	Path       string `yaml:"path" json:"path" required:"true"`
	Namespace  string `yaml:"namespace" json:"namespace" default:"strata"`
	RecordName string `yaml:"record_name" json:"record_name"`
	// Codec is "null", "deflate" or "snappy"
	Codec      string `yaml:"codec" json:"codec" default:"null"`
	CreateDirs bool   `yaml:"create_dirs" json:"create_dirs" default:"true"`
}

// DefaultAvroDestinationConfig returns the Avro destination defaults
func DefaultAvroDestinationConfig() AvroDestinationConfig {
	return AvroDestinationConfig{Namespace: "strata", Codec: "null", CreateDirs: true}
}

// KafkaDestinationConfig contains configuration for Kafka destinations
type KafkaDestinationConfig struct {
	Brokers   []string `yaml:"brokers" json:"brokers" required:"true"`
	Topic     string   `yaml:"topic" json:"topic" required:"true"`
	KeyColumn string   `yaml:"key_column" json:"key_column"`
	ClientID  string   `yaml:"client_id" json:"client_id" default:"strata"`
	// Acks is "all", "1" or "0"
	Acks string `yaml:"acks" json:"acks" default:"all"`
	// Compression is "none", "gzip", "snappy", "lz4" or "zstd"
	Compression string `yaml:"compression" json:"compression" default:"none"`
}

// DefaultKafkaDestinationConfig returns the Kafka destination defaults
func DefaultKafkaDestinationConfig() KafkaDestinationConfig {
	return KafkaDestinationConfig{ClientID: "strata", Acks: "all", Compression: "none"}
}

// ObjectStoreConfig contains configuration for object storage destinations
// (S3 and GCS)
type ObjectStoreConfig struct {
	Bucket string `yaml:"bucket" json:"bucket" required:"true"`
	Key    string `yaml:"key" json:"key" required:"true"`
	// Format of the uploaded object: "csv" or "json"
	Format      string `yaml:"format" json:"format" default:"csv"`
	Compression string `yaml:"compression" json:"compression" default:"none"`
	Region      string `yaml:"region" json:"region"`
	Endpoint    string `yaml:"endpoint" json:"endpoint"`
	// UsePathStyle addresses S3 buckets by path, as S3 compatible stores need
	UsePathStyle    bool   `yaml:"use_path_style" json:"use_path_style"`
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`
}

// DefaultObjectStoreConfig returns the object storage defaults
func DefaultObjectStoreConfig() ObjectStoreConfig {
	return ObjectStoreConfig{Format: "csv", Compression: "none"}
}
