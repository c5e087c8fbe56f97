package service

import (
	"context"
	"strings"
	"time"

	"sankalpa/internal/events"
	"sankalpa/internal/feed"
	"sankalpa/internal/models"
	"sankalpa/internal/repository"
	"sankalpa/internal/rewards"
)

const (
	maxPostLen    = 2000
	maxCommentLen = 1000
)

type CommunityService struct {
	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	events   events.Publisher
	rewards  rewarder
	now      func() time.Time
}

type CreatePostInput struct {
	UserID   uint
	Content  string
	Category string
}

type AddCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

// LikeResult is the state of a post after a like toggle.
type LikeResult struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
	// MilestoneAwarded is set when this like earned the author the milestone coins.
	MilestoneAwarded bool `json:"milestone_awarded"`
}

func NewCommunityService(
	users repository.UserRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	follows repository.FollowRepository,
	pub events.Publisher,
) *CommunityService {
	return &CommunityService{
		users:    users,
		posts:    posts,
		comments: comments,
		follows:  follows,
		events:   pub,
		rewards:  rewarder{users: users, events: pub},
		now:      systemNow,
	}
}

func (s *CommunityService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len([]rune(content)) > maxPostLen {
		return nil, models.NewValidationError("Content too long (max 2000 characters)")
	}

	category := feed.Category(strings.ToLower(strings.TrimSpace(in.Category)))
	if category == "" {
		category = feed.CategoryGeneral
	}
	if !category.Valid() {
		return nil, models.NewValidationError("Invalid category")
	}

	post := &models.Post{
		UserID:   in.UserID,
		Content:  content,
		Category: category,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.PostCreated, events.PostEvent{
		PostID:   post.ID,
		AuthorID: post.UserID,
		Category: string(post.Category),
	})
	if err := s.rewards.grant(ctx, in.UserID, rewards.PostShared()); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *CommunityService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, postID)
}

// ToggleLike likes the post, or removes the like when the user already liked it.
func (s *CommunityService) ToggleLike(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.posts.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	res := &LikeResult{}
	if liked {
		if _, err := s.posts.Unlike(ctx, userID, postID); err != nil {
			return nil, err
		}
	} else {
		inserted, err := s.posts.Like(ctx, userID, postID)
		if err != nil {
			return nil, err
		}
		res.Liked = true
		if !inserted {
			// a concurrent request stored the same like
			count, err := s.posts.CountLikes(ctx, postID)
			if err != nil {
				return nil, err
			}
			res.Likes = count
			return res, nil
		}
	}

	count, err := s.posts.CountLikes(ctx, postID)
	if err != nil {
		return nil, err
	}
	res.Likes = count

	if res.Liked && rewards.LikeMilestoneReached(int(count), userID, post.UserID) {
		g := rewards.Grant{Coins: rewards.LikeMilestoneCoins, Reason: rewards.ReasonLikeMilestone}
		if err := s.rewards.grant(ctx, post.UserID, g); err != nil {
			return nil, err
		}
		res.MilestoneAwarded = true
	}
	return res, nil
}

// AddComment stores a comment. Every fifth comment by the same user earns
// the wisdom sharer award.
func (s *CommunityService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len([]rune(content)) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 1000 characters)")
	}
	if _, err := s.posts.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{UserID: in.UserID, PostID: in.PostID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	total, err := s.comments.CountByUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if rewards.WisdomSharerReached(int(total)) {
		g := rewards.Grant{Coins: rewards.CommentMilestoneCoins, Reason: rewards.ReasonWisdomSharer}
		if err := s.rewards.grant(ctx, in.UserID, g); err != nil {
			return nil, err
		}
	}
	return comment, nil
}

func (s *CommunityService) ListComments(ctx context.Context, postID uint, limit int) ([]*models.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(ctx, postID, limit)
}

// ToggleFollow reports whether the follower follows the followee afterwards.
func (s *CommunityService) ToggleFollow(ctx context.Context, followerID, followeeID uint) (bool, error) {
	if followerID == followeeID {
		return false, models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.users.GetByID(ctx, followeeID); err != nil {
		return false, err
	}
	return s.follows.Toggle(ctx, followerID, followeeID)
}

func (s *CommunityService) requireHero(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsHero(s.now()) {
		return nil, models.NewForbiddenError("Community hero status required")
	}
	return user, nil
}

// GiveHeroAward lets an active community hero award someone else's post once.
func (s *CommunityService) GiveHeroAward(ctx context.Context, grantorID, postID uint) error {
	if _, err := s.requireHero(ctx, grantorID); err != nil {
		return err
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID == grantorID {
		return models.NewValidationError("You cannot award your own post")
	}

	added, err := s.posts.AddHeroAward(ctx, grantorID, postID)
	if err != nil {
		return err
	}
	if !added {
		return models.NewConflictError("Post already awarded")
	}
	publish(ctx, s.events, events.HeroAwardGiven, events.PostEvent{
		PostID:   post.ID,
		AuthorID: post.UserID,
		ActorID:  grantorID,
	})
	return nil
}

// PinPost leaves postID as the only pinned post.
func (s *CommunityService) PinPost(ctx context.Context, userID, postID uint) (feed.PinPlan, error) {
	if _, err := s.requireHero(ctx, userID); err != nil {
		return feed.PinPlan{}, err
	}
	plan, err := s.posts.Pin(ctx, postID)
	if err != nil {
		return feed.PinPlan{}, err
	}
	if !plan.Empty() {
		publish(ctx, s.events, events.PostPinned, events.PostEvent{PostID: postID, ActorID: userID})
	}
	return plan, nil
}
