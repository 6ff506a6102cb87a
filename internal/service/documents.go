package service

import (
	"context"

	"scootshare-backend/internal/repository"
)

// repoDocumentVerifier answers document-approval checks from the persisted
// verification flags. The verification workflow itself lives in an external
// service that maintains those flags.
type repoDocumentVerifier struct {
	renters repository.RenterRepository
	hosts   repository.HostRepository
}

func NewDocumentVerifier(renters repository.RenterRepository, hosts repository.HostRepository) DocumentVerifier {
	return &repoDocumentVerifier{renters: renters, hosts: hosts}
}

func (v *repoDocumentVerifier) IsRenterApproved(ctx context.Context, renterID int32) (bool, error) {
	renter, err := v.renters.GetByID(ctx, renterID)
	if err != nil {
		return false, err
	}
	return renter.IsDocVerified, nil
}

func (v *repoDocumentVerifier) IsHostApproved(ctx context.Context, hostID int32) (bool, error) {
	host, err := v.hosts.GetByID(ctx, hostID)
	if err != nil {
		return false, err
	}
	return host.IsDocVerified, nil
}
