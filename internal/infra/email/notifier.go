package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	"go.uber.org/zap"
)

type SMTPNotifier struct {
	host   string
	port   int
	from   string
	logger *zap.Logger
}

func NewSMTPNotifier(host string, port int, from string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, from: from, logger: logger}
}

func (n *SMTPNotifier) NotifyCompletion(_ context.Context, to, runID string, report *entity.EvalReport) error {
	subject := fmt.Sprintf("faceseq - Run Completed [%s]", runID)
	body := fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"Your deepfake detection run has completed.\r\n\r\n"+
			"Run ID: %s\r\n"+
			"Test samples: %d\r\n"+
			"Accuracy: %.4f\r\n"+
			"Precision: %.4f\r\n"+
			"Recall: %.4f\r\n"+
			"F1: %.4f\r\n"+
			"ROC AUC: %.4f\r\n\r\n"+
			"-- faceseq pipeline",
		runID, report.TestCount, report.Accuracy, report.Precision,
		report.Recall, report.F1, report.AUC,
	)
	return n.send(to, runID, subject, body)
}

func (n *SMTPNotifier) NotifyFailure(_ context.Context, to, runID, stage, errorMsg string) error {
	subject := fmt.Sprintf("faceseq - Run Failed [%s]", runID)
	body := fmt.Sprintf(
		"Hello,\r\n\r\n"+
			"Your deepfake detection run has failed.\r\n\r\n"+
			"Run ID: %s\r\n"+
			"Stage: %s\r\n"+
			"Error: %s\r\n\r\n"+
			"-- faceseq pipeline",
		runID, stage, errorMsg,
	)
	return n.send(to, runID, subject, body)
}

func (n *SMTPNotifier) send(to, runID, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		n.from, to, subject, body,
	)

	err := smtp.SendMail(addr, nil, n.from, []string{to}, []byte(msg))
	if err != nil {
		n.logger.Error("failed to send notification email",
			zap.String("to", to),
			zap.String("run_id", runID),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("notification email sent",
		zap.String("to", to),
		zap.String("run_id", runID),
	)
	return nil
}
