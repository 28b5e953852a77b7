// Package domain holds the typed identifiers shared across modules.
//
// Each entity gets its own UUID-backed type so the compiler rejects a
// ResidueID where a CollectionID is expected. Parse helpers enforce the
// invariant that IDs are valid, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "recircle/pkg/domain-errors"
)

type (
	UserID       uuid.UUID
	ResidueID    uuid.UUID
	CollectionID uuid.UUID
	RewardID     uuid.UUID
	RedemptionID uuid.UUID
)

func (id UserID) String() string       { return uuid.UUID(id).String() }
func (id ResidueID) String() string    { return uuid.UUID(id).String() }
func (id CollectionID) String() string { return uuid.UUID(id).String() }
func (id RewardID) String() string     { return uuid.UUID(id).String() }
func (id RedemptionID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool       { return uuid.UUID(id) == uuid.Nil }
func (id ResidueID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CollectionID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id RewardID) IsZero() bool     { return uuid.UUID(id) == uuid.Nil }

// NewUserID returns a fresh random user ID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewResidueID returns a fresh random residue ID.
func NewResidueID() ResidueID { return ResidueID(uuid.New()) }

// NewCollectionID returns a fresh random collection ID.
func NewCollectionID() CollectionID { return CollectionID(uuid.New()) }

// NewRewardID returns a fresh random reward ID.
func NewRewardID() RewardID { return RewardID(uuid.New()) }

// NewRedemptionID returns a fresh random redemption ID.
func NewRedemptionID() RedemptionID { return RedemptionID(uuid.New()) }

func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "id must not be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "id must not be the nil UUID")
	}
	return parsed, nil
}

// ParseUserID validates raw and returns a typed user ID.
func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return UserID{}, err
	}
	return UserID(parsed), nil
}

// ParseResidueID validates raw and returns a typed residue ID.
func ParseResidueID(raw string) (ResidueID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return ResidueID{}, err
	}
	return ResidueID(parsed), nil
}

// ParseCollectionID validates raw and returns a typed collection ID.
func ParseCollectionID(raw string) (CollectionID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return CollectionID{}, err
	}
	return CollectionID(parsed), nil
}

// ParseRewardID validates raw and returns a typed reward ID.
func ParseRewardID(raw string) (RewardID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return RewardID{}, err
	}
	return RewardID(parsed), nil
}

// ParseRedemptionID validates raw and returns a typed redemption ID.
func ParseRedemptionID(raw string) (RedemptionID, error) {
	parsed, err := parseUUID(raw)
	if err != nil {
		return RedemptionID{}, err
	}
	return RedemptionID(parsed), nil
}
