package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyScadaDBType string = "SCADA_DB_TYPE"
	EnvKeyScadaDbPath string = "SCADA_DB_PATH"

	EnvKeyScadaHttpHostPort string = "SCADA_HTTP_HOST_PORT"

	EnvKeyScadaLogsDir string = "SCADA_LOGS_DIR"

	EnvKeyScadaDefaultTickMs string = "SCADA_DEFAULT_TICK_MS"

	EnvKeyScadaDefaultRate  string = "SCADA_DEFAULT_RATE"
	EnvKeyScadaDefaultBurst string = "SCADA_DEFAULT_BURST"

	LoggerNameScadaCore     string = "scada_core"
	LoggerNameCollector     string = "collector"
	LoggerNameBroadcast     string = "broadcast"
	LoggerNameSubscription  string = "subscription"
	LoggerNameRestfulServer string = "restful_server"

	LoggerFieldScadaCategory     string = "category"
	LoggerCategoryMeasurement    string = "measurement"
	LoggerCategoryAlarm          string = "alarm"
	LoggerCategoryConfig         string = "config"
	LoggerCategoryDeviceRunner   string = "device_runner"
	LoggerCategoryTestConnection string = "test_connection"
)
