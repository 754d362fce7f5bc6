package i18n

// Key names a catalog message.
type Key string

const (
	LoadFailed       Key = "feed.loadFailed"
	EmptyText        Key = "comment.emptyText"
	NotSignedIn      Key = "auth.notSignedIn"
	CommentFailed    Key = "comment.failed"
	ReplyFailed      Key = "reply.failed"
	CommentDeleted   Key = "comment.deleted"
	DeleteFailed     Key = "delete.failed"
	LikeFailed       Key = "like.failed"
	DeleteTitle      Key = "delete.title"
	DeleteComment    Key = "delete.comment"
	DeleteReply      Key = "delete.reply"
	DeletePost       Key = "delete.post"
	PostDeleted      Key = "post.deleted"
	PostDeleteFailed Key = "post.deleteFailed"
	Dismissed        Key = "feed.dismissed"
	Publishing       Key = "publish.publishing"
	Published        Key = "publish.success"
	Sending          Key = "comment.sending"
	NoComments       Key = "comment.none"
	NoItems          Key = "feed.empty"
	ReplyingTo       Key = "comment.replyingTo"
	CommentHint      Key = "comment.hint"
	Loading          Key = "feed.loading"
	BadgePost        Key = "badge.post"
	BadgeShipment    Key = "badge.shipment"
	BadgeTruck       Key = "badge.truck"
)

var catalog = map[Locale]map[Key]string{
	Arabic: {
		LoadFailed:       "تعذر تحميل المنشورات، حاول مرة أخرى",
		EmptyText:        "لا يمكن إرسال تعليق فارغ",
		NotSignedIn:      "يجب تسجيل الدخول أولاً",
		CommentFailed:    "فشل إرسال التعليق",
		ReplyFailed:      "فشل إرسال الرد",
		CommentDeleted:   "تم حذف التعليق",
		DeleteFailed:     "فشل الحذف",
		LikeFailed:       "فشل تحديث الإعجاب",
		DeleteTitle:      "تأكيد الحذف",
		DeleteComment:    "هل تريد حذف هذا التعليق؟",
		DeleteReply:      "هل تريد حذف هذا الرد؟",
		DeletePost:       "هل تريد حذف هذا المنشور؟",
		PostDeleted:      "تم حذف المنشور",
		PostDeleteFailed: "فشل حذف المنشور",
		Dismissed:        "تم إخفاء المنشور",
		Publishing:       "جاري النشر...",
		Published:        "تم النشر بنجاح",
		Sending:          "جاري الإرسال...",
		NoComments:       "لا توجد تعليقات بعد",
		NoItems:          "لا توجد منشورات",
		ReplyingTo:       "الرد على",
		CommentHint:      "اكتب تعليقاً...",
		Loading:          "جاري التحميل...",
		BadgePost:        "منشور",
		BadgeShipment:    "شحنة",
		BadgeTruck:       "شاحنة فارغة",
	},
	English: {
		LoadFailed:       "Couldn't load posts, try again",
		EmptyText:        "Comment can't be empty",
		NotSignedIn:      "Please sign in first",
		CommentFailed:    "Failed to send comment",
		ReplyFailed:      "Failed to send reply",
		CommentDeleted:   "Comment deleted",
		DeleteFailed:     "Delete failed",
		LikeFailed:       "Failed to update like",
		DeleteTitle:      "Confirm delete",
		DeleteComment:    "Delete this comment?",
		DeleteReply:      "Delete this reply?",
		DeletePost:       "Delete this post?",
		PostDeleted:      "Post deleted",
		PostDeleteFailed: "Failed to delete post",
		Dismissed:        "Post hidden",
		Publishing:       "Publishing...",
		Published:        "Published",
		Sending:          "Sending...",
		NoComments:       "No comments yet",
		NoItems:          "No posts",
		ReplyingTo:       "Replying to",
		CommentHint:      "Write a comment...",
		Loading:          "Loading...",
		BadgePost:        "post",
		BadgeShipment:    "shipment",
		BadgeTruck:       "empty truck",
	},
}

// T returns the message for key in loc, falling back to English and then
// to the key itself.
func T(loc Locale, key Key) string {
	if msg, ok := catalog[loc][key]; ok {
		return msg
	}
	if msg, ok := catalog[English][key]; ok {
		return msg
	}
	return string(key)
}
