package services

import (
	"context"
	"fmt"

	"reading-club/internal/models"

	"github.com/google/uuid"
)

const historyLimit = 8

// BallotEntry is one proposal on the ballot with its tally, voters, and
// the caller's unread discussion count.
type BallotEntry struct {
	models.ProposalTally
	Voters         []models.UserInfo `json:"voters"`
	UnreadComments int64             `json:"unread_comments"`
}

// ReadingInfo is the week's reading item with group progress attached.
type ReadingInfo struct {
	Item          *models.ReadingItem `json:"item"`
	CommentsCount int64               `json:"comments_count"`
	ReadCount     int64               `json:"read_count"`
	MyStatus      models.ReadStatus   `json:"my_status"`
}

// MemberInfo is one group member for the snapshot roster.
type MemberInfo struct {
	models.UserInfo
	Role     models.GroupRole `json:"role"`
	HasVoted bool             `json:"has_voted"`
}

// GroupSnapshot is the one-call view the client renders: group settings,
// the current week, the ballot, the reading, and recent history.
type GroupSnapshot struct {
	Group         *models.Group           `json:"group"`
	MyRole        models.GroupRole        `json:"my_role"`
	Members       []MemberInfo            `json:"members"`
	Week          *models.Week            `json:"week"`
	Ballot        []BallotEntry           `json:"ballot"`
	TalliesHidden bool                    `json:"tallies_hidden"`
	MyVote        *uuid.UUID              `json:"my_vote"`
	Reading       *ReadingInfo            `json:"reading"`
	History       []models.WeekHistoryRow `json:"history"`
	Invites       []*models.Invite        `json:"invites,omitempty"`
}

// GetGroupSnapshot runs the week's due transitions and assembles the full
// group view for the caller. With live tally off, vote counts and voter
// lists stay hidden while voting is open; only who-has-voted shows.
func (s *WeekService) GetGroupSnapshot(ctx context.Context, groupID, userID uuid.UUID) (*GroupSnapshot, error) {
	member, err := s.requireMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	week, err := s.EnsureCurrentWeek(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group, err := s.repo.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}

	tallies, err := s.repo.GetWeekTallies(ctx, week.ID)
	if err != nil {
		return nil, fmt.Errorf("load tallies: %w", err)
	}
	voters, err := s.repo.GetWeekVoters(ctx, week.ID)
	if err != nil {
		return nil, fmt.Errorf("load voters: %w", err)
	}
	votersByProposal := make(map[uuid.UUID][]models.UserInfo)
	votedUsers := make(map[uuid.UUID]struct{})
	for _, v := range voters {
		votersByProposal[v.ProposalID] = append(votersByProposal[v.ProposalID],
			models.UserInfo{ID: v.UserID, Name: v.UserName})
		votedUsers[v.UserID] = struct{}{}
	}

	unread, err := s.unreadProposalComments(ctx, userID, week.ID, tallies)
	if err != nil {
		return nil, err
	}

	hidden := !group.LiveTally && week.Status == models.WeekStatusVotingOpen
	ballot := make([]BallotEntry, 0, len(tallies))
	for _, t := range tallies {
		entry := BallotEntry{
			ProposalTally:  t,
			Voters:         votersByProposal[t.ProposalID],
			UnreadComments: unread[t.ProposalID],
		}
		if entry.Voters == nil {
			entry.Voters = []models.UserInfo{}
		}
		if hidden {
			entry.VoteCount = 0
			entry.Voters = []models.UserInfo{}
		}
		ballot = append(ballot, entry)
	}

	var myVote *uuid.UUID
	if vote, err := s.repo.GetUserVote(ctx, week.ID, userID); err != nil {
		return nil, fmt.Errorf("load vote: %w", err)
	} else if vote != nil {
		pid := vote.ProposalID
		myVote = &pid
	}

	reading, err := s.readingInfo(ctx, userID, week.ID)
	if err != nil {
		return nil, err
	}
	history, err := s.weekHistory(ctx, groupID, week.ID)
	if err != nil {
		return nil, err
	}
	roster, err := s.memberRoster(ctx, groupID, votedUsers)
	if err != nil {
		return nil, err
	}

	// Admins also see outstanding invites
	var invites []*models.Invite
	if member.Role.Weight() >= models.GroupRoleAdmin.Weight() {
		all, err := s.repo.GetGroupInvites(ctx, groupID)
		if err != nil {
			return nil, fmt.Errorf("load invites: %w", err)
		}
		for _, inv := range all {
			if inv.Status == models.InviteStatusPending {
				invites = append(invites, inv)
			}
		}
	}

	return &GroupSnapshot{
		Group:         group,
		MyRole:        member.Role,
		Members:       roster,
		Week:          week,
		Ballot:        ballot,
		TalliesHidden: hidden,
		MyVote:        myVote,
		Reading:       reading,
		History:       history,
		Invites:       invites,
	}, nil
}

// unreadProposalComments counts, per ballot proposal, live comments newer
// than the caller's read cursor and written by someone else.
func (s *WeekService) unreadProposalComments(ctx context.Context, userID, weekID uuid.UUID, tallies []models.ProposalTally) (map[uuid.UUID]int64, error) {
	ids := make([]uuid.UUID, 0, len(tallies))
	for _, t := range tallies {
		ids = append(ids, t.ProposalID)
	}
	cursors, err := s.repo.GetProposalCommentReads(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("load comment cursors: %w", err)
	}
	comments, err := s.repo.GetWeekProposalComments(ctx, weekID)
	if err != nil {
		return nil, fmt.Errorf("load proposal comments: %w", err)
	}

	unread := make(map[uuid.UUID]int64, len(ids))
	for _, c := range comments {
		if c.AuthorID == userID {
			continue
		}
		if cursor, ok := cursors[c.ProposalID]; ok && !c.CreatedAt.After(cursor) {
			continue
		}
		unread[c.ProposalID]++
	}
	return unread, nil
}

func (s *WeekService) readingInfo(ctx context.Context, userID, weekID uuid.UUID) (*ReadingInfo, error) {
	item, err := s.repo.GetReadingItemByWeek(ctx, weekID)
	if err != nil {
		return nil, fmt.Errorf("load reading item: %w", err)
	}
	if item == nil {
		return nil, nil
	}

	commentsCount, err := s.repo.CountReadingItemComments(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	readCount, err := s.repo.CountReadMarks(ctx, item.ID, models.ReadStatusRead)
	if err != nil {
		return nil, fmt.Errorf("count read marks: %w", err)
	}
	myStatus := models.ReadStatusNotMarked
	if mark, err := s.repo.GetUserReadMark(ctx, userID, item.ID); err != nil {
		return nil, fmt.Errorf("load read mark: %w", err)
	} else if mark != nil {
		myStatus = mark.Status
	}

	return &ReadingInfo{
		Item:          item,
		CommentsCount: commentsCount,
		ReadCount:     readCount,
		MyStatus:      myStatus,
	}, nil
}

// weekHistory lists past resolved weeks. The current week is skipped so
// a week resolved earlier in the same calendar week does not show up in
// both the live view and the history.
func (s *WeekService) weekHistory(ctx context.Context, groupID, currentWeekID uuid.UUID) ([]models.WeekHistoryRow, error) {
	weeks, err := s.repo.GetResolvedWeeks(ctx, groupID, historyLimit+1)
	if err != nil {
		return nil, fmt.Errorf("load resolved weeks: %w", err)
	}
	history := make([]models.WeekHistoryRow, 0, len(weeks))
	for _, w := range weeks {
		if w.ID == currentWeekID {
			continue
		}
		if len(history) == historyLimit {
			break
		}
		item, err := s.repo.GetReadingItemByWeek(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("load reading item: %w", err)
		}
		if item == nil {
			continue
		}
		commentsCount, err := s.repo.CountReadingItemComments(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("count comments: %w", err)
		}
		readCount, err := s.repo.CountReadMarks(ctx, item.ID, models.ReadStatusRead)
		if err != nil {
			return nil, fmt.Errorf("count read marks: %w", err)
		}
		history = append(history, models.WeekHistoryRow{
			WeekID:        w.ID,
			StartDate:     w.StartDate,
			Reference:     item.Reference,
			CommentsCount: commentsCount,
			ReadCount:     readCount,
		})
	}
	return history, nil
}

func (s *WeekService) memberRoster(ctx context.Context, groupID uuid.UUID, voted map[uuid.UUID]struct{}) ([]MemberInfo, error) {
	members, err := s.repo.GetGroupMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	users, err := s.repo.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	roster := make([]MemberInfo, 0, len(members))
	for _, m := range members {
		name := ""
		if u, ok := users[m.UserID]; ok {
			name = u.Name
		}
		_, hasVoted := voted[m.UserID]
		roster = append(roster, MemberInfo{
			UserInfo: models.UserInfo{ID: m.UserID, Name: name},
			Role:     m.Role,
			HasVoted: hasVoted,
		})
	}
	return roster, nil
}
