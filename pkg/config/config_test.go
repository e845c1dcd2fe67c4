package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factura-afip/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("AFIP_ENV", "homo")
	t.Setenv("AFIP_CUIT", "30-00000000-7")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.AFIP.TimeoutSec)
	assert.Equal(t, 80, cfg.AFIP.DocType)
	assert.False(t, cfg.AFIP.EnforceSequenceCheck)
	assert.Equal(t, cfg.DB.Host, cfg.ERPDB.Host, "la réplica del ERP usa la base principal por defecto")
	assert.False(t, cfg.DB.ForceIPv4)
}

func TestLoad_ListaDeAdministradores(t *testing.T) {
	t.Setenv("AFIP_ENV", "dev")
	t.Setenv("ADMIN_EMAILS", "ops@example.com, contable@example.com ,")
	t.Setenv("AFIP_ENFORCE_SEQUENCE_CHECK", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@example.com", "contable@example.com"}, cfg.SMTP.AdminEmails)
	assert.True(t, cfg.AFIP.EnforceSequenceCheck)
}

func TestLoad_ForzarIPv4SeHeredaEnElERP(t *testing.T) {
	t.Setenv("AFIP_ENV", "dev")
	t.Setenv("DB_FORCE_IPV4", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.DB.ForceIPv4)
	assert.True(t, cfg.ERPDB.ForceIPv4)
}

func TestLoad_CUITInvalido(t *testing.T) {
	t.Setenv("AFIP_ENV", "prod")
	t.Setenv("AFIP_CUIT", "30-00000000-8")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AFIP_CUIT")
}

func TestLoad_EntornoAFIPDesconocido(t *testing.T) {
	t.Setenv("AFIP_ENV", "staging")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w/rd", DBName: "fe", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw%2Frd@db:5432/fe?sslmode=disable", c.DSN())
}
