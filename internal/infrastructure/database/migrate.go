package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/givingprint/payment-service/internal/domain/model"
)

// Migrate runs database migrations
func Migrate(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations...")

	if err := createExtensions(db); err != nil {
		logger.Error("Failed to create extensions", zap.Error(err))
		return err
	}

	// Custom enum types must exist before auto-migrate references them.
	if err := createCustomTypes(db); err != nil {
		logger.Error("Failed to create custom types", zap.Error(err))
		return err
	}

	err := db.AutoMigrate(
		&model.Payment{},
		&model.WebhookEvent{},
		&model.CampaignPayment{},
		&model.PaymentLog{},
		&model.FingerprintAllocation{},
		&model.AuditLog{},
	)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return err
	}

	if err := createCustomIndexes(db); err != nil {
		logger.Error("Failed to create custom indexes", zap.Error(err))
		return err
	}

	if err := createAuditTriggers(db, logger); err != nil {
		logger.Error("Failed to create audit triggers", zap.Error(err))
		return err
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// createCustomIndexes creates partial indexes that GORM tags cannot express
func createCustomIndexes(db *gorm.DB) error {
	// Unprocessed webhook events, scanned by the ops tooling.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_webhook_events_unprocessed ON webhook_events (received_at) WHERE status IN ('received', 'failed')`).Error; err != nil {
		return err
	}

	// The email fallback scans pending payments for a donor, newest first.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payments_pending_by_email ON payments (donor_email, created_at DESC) WHERE status = 'pending' AND donor_email IS NOT NULL`).Error; err != nil {
		return err
	}

	// Log entries that never resolved to a payment record.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_payment_logs_unresolved ON payment_logs (created_at) WHERE payment_id IS NULL`).Error; err != nil {
		return err
	}

	return nil
}

// createExtensions creates required PostgreSQL extensions
func createExtensions(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return err
	}
	return nil
}

// createCustomTypes creates custom PostgreSQL enum types
func createCustomTypes(db *gorm.DB) error {
	var exists bool

	db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'payment_status')`).Scan(&exists)
	if !exists {
		if err := db.Exec(`CREATE TYPE payment_status AS ENUM ('pending', 'processing', 'completed', 'failed')`).Error; err != nil {
			return err
		}
	}

	db.Raw(`SELECT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'webhook_status')`).Scan(&exists)
	if !exists {
		if err := db.Exec(`CREATE TYPE webhook_status AS ENUM ('received', 'processed', 'failed')`).Error; err != nil {
			return err
		}
	}

	return nil
}

// createAuditTriggers installs a row-level audit trail on the tables that
// money moves through. Every insert, update and delete lands in audit_log
// with the old and new row images.
func createAuditTriggers(db *gorm.DB, logger *zap.Logger) error {
	auditFunctionSQL := `
CREATE OR REPLACE FUNCTION audit_table_changes() RETURNS TRIGGER AS $$
DECLARE
    v_record_id TEXT;
BEGIN
    IF TG_OP = 'DELETE' THEN
        v_record_id := OLD.id::TEXT;
        INSERT INTO audit_log (action, table_name, record_id, old_values)
        VALUES ('DELETE', TG_TABLE_NAME, v_record_id, to_jsonb(OLD));
        RETURN OLD;
    ELSIF TG_OP = 'UPDATE' THEN
        v_record_id := NEW.id::TEXT;
        INSERT INTO audit_log (action, table_name, record_id, old_values, new_values)
        VALUES ('UPDATE', TG_TABLE_NAME, v_record_id, to_jsonb(OLD), to_jsonb(NEW));
        RETURN NEW;
    ELSIF TG_OP = 'INSERT' THEN
        v_record_id := NEW.id::TEXT;
        INSERT INTO audit_log (action, table_name, record_id, new_values)
        VALUES ('INSERT', TG_TABLE_NAME, v_record_id, to_jsonb(NEW));
        RETURN NEW;
    END IF;
END;
$$ LANGUAGE plpgsql SECURITY DEFINER;`

	if err := db.Exec(auditFunctionSQL).Error; err != nil {
		return err
	}

	tables := []string{"payments", "campaign_payments"}
	for _, table := range tables {
		dropSQL := fmt.Sprintf(`DROP TRIGGER IF EXISTS audit_%s ON %s;`, table, table)
		if err := db.Exec(dropSQL).Error; err != nil {
			logger.Warn("Failed to drop existing trigger", zap.String("table", table), zap.Error(err))
		}

		triggerSQL := fmt.Sprintf(`
CREATE TRIGGER audit_%s
    AFTER INSERT OR UPDATE OR DELETE ON %s
    FOR EACH ROW EXECUTE FUNCTION audit_table_changes();`, table, table)
		if err := db.Exec(triggerSQL).Error; err != nil {
			return err
		}
		logger.Info("Created audit trigger", zap.String("table", table))
	}

	return nil
}
