package domain

import (
	"errors"
	"testing"
)

func TestDonationStage(t *testing.T) {
	d := &Donation{DonationID: "d1", DonorID: "donor"}
	if d.Stage() != StageEmpty {
		t.Fatalf("stage = %s, want empty", d.Stage())
	}
	d.Listing = &Listing{ListingID: "l1"}
	if d.Stage() != StageListed {
		t.Fatalf("stage = %s, want listed", d.Stage())
	}
	if err := d.AttachForm(Form{FormID: "f1", RecipientID: "r1"}); err != nil {
		t.Fatalf("AttachForm: %v", err)
	}
	if d.Stage() != StageClaimed {
		t.Fatalf("stage = %s, want claimed", d.Stage())
	}
	d.IssueReceipt(Receipt{ReceiptID: "rc1", DonationAmountLbs: 10})
	if d.Stage() != StageReceipted {
		t.Fatalf("stage = %s, want receipted", d.Stage())
	}
}

func TestAttachFormStampsParentIdentifiers(t *testing.T) {
	d := &Donation{DonationID: "d1", DonorID: "donor", Listing: &Listing{ListingID: "l1"}}
	if err := d.AttachForm(Form{FormID: "f1", DonationID: "other", ListingID: "other", RecipientID: "r1"}); err != nil {
		t.Fatalf("AttachForm: %v", err)
	}
	if d.Form.DonationID != "d1" || d.Form.ListingID != "l1" || d.Form.DonorID != "donor" {
		t.Fatalf("form identifiers not stamped: %+v", d.Form)
	}
	if d.RecipientID != "r1" {
		t.Fatalf("recipient id = %q, want r1", d.RecipientID)
	}
}

func TestAttachFormRequiresListing(t *testing.T) {
	d := &Donation{DonationID: "d1"}
	err := d.AttachForm(Form{FormID: "f1"})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
	if d.Form != nil {
		t.Fatalf("form must not be set on failure")
	}
}

func TestRemoveListingKeepsFormAndReceipt(t *testing.T) {
	d := &Donation{DonationID: "d1", Listing: &Listing{ListingID: "l1"}}
	if err := d.AttachForm(Form{FormID: "f1"}); err != nil {
		t.Fatalf("AttachForm: %v", err)
	}
	d.IssueReceipt(Receipt{ReceiptID: "r1"})
	if err := d.RemoveListing(); err != nil {
		t.Fatalf("RemoveListing: %v", err)
	}
	if d.Listing != nil || d.Form == nil || d.Receipt == nil {
		t.Fatalf("unexpected donation after listing removal: %+v", d)
	}
	if d.Receipt.ListingID != "l1" {
		t.Fatalf("receipt listing id = %q, want l1", d.Receipt.ListingID)
	}
	if err := d.RemoveListing(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second RemoveListing err = %v, want ErrNotFound", err)
	}
}

func TestIssueReceiptInheritsRecipient(t *testing.T) {
	d := &Donation{DonationID: "d1", DonorID: "donor", RecipientID: "r1"}
	d.IssueReceipt(Receipt{ReceiptID: "rc", ListingID: "l1"})
	if d.Receipt.RecipientID != "r1" || d.Receipt.DonorID != "donor" {
		t.Fatalf("receipt = %+v", d.Receipt)
	}
	d.IssueReceipt(Receipt{ReceiptID: "rc2", RecipientID: "r2"})
	if d.RecipientID != "r2" {
		t.Fatalf("explicit receipt recipient should update root, got %q", d.RecipientID)
	}
}

func TestFormBreakdown(t *testing.T) {
	f := Form{LbsExpiredFood: 1, LbsFoodForConsumption: 80, LbsFoodForFarms: 14, LbsFoodForWaste: 5}
	if f.BreakdownLbs() != 100 {
		t.Fatalf("BreakdownLbs() = %v, want 100", f.BreakdownLbs())
	}
}
