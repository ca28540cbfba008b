package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/models"
	"github.com/xuri/excelize/v2"
)

const applicantsSheet = "Applicants"

var applicantHeader = []any{
	"Applied at", "Status", "Name", "Phone", "Email", "Birth date",
	"Channel", "Channel URL", "Followers", "Visit date", "Message",
}

// ExportApplicants renders the owner's applicant list as an xlsx workbook.
func (s *ApplicationService) ExportApplicants(ctx context.Context, identity, campaignID uuid.UUID) ([]byte, string, error) {
	c, err := s.authz.RequireCampaignOwner(ctx, identity, campaignID)
	if err != nil {
		return nil, "", err
	}
	apps, err := s.applications.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, "", err
	}

	data, err := applicantsWorkbook(apps)
	if err != nil {
		return nil, "", fmt.Errorf("render applicants workbook: %w", err)
	}

	recordAudit(ctx, s.audit, s.log, userAudit(identity, "applicants_exported", "campaign", c.ID,
		map[string]any{"rows": len(apps)}))
	return data, fmt.Sprintf("applicants-%s.xlsx", c.ID), nil
}

func applicantsWorkbook(apps []models.ApplicationWithInfluencer) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", applicantsSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(applicantsSheet, "A1", &applicantHeader); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(applicantsSheet, 1, 1, bold); err != nil {
		return nil, err
	}

	for i, a := range apps {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			a.CreatedAt.Format("2006-01-02 15:04"),
			string(a.Status),
			a.Influencer.Profile.Name,
			a.Influencer.Profile.Phone,
			a.Influencer.Profile.Email,
			a.Influencer.Profile.BirthDate,
			a.Influencer.ChannelName,
			a.Influencer.ChannelURL,
			a.Influencer.FollowerCount,
			a.VisitDate,
			a.Message,
		}
		if err := f.SetSheetRow(applicantsSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(applicantsSheet, "A", "K", 18); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
