// Package rbac holds the process-wide permission catalog and the role to
// permission-pattern mapping. Both are read-only after startup: roles are a
// static set seeded at deployment and never created at runtime.
package rbac

// Permission codes are flat dot-scoped strings. The catalog below is the
// complete closed set; role patterns expand against it.
const (
	PermSystemHealthRead = "system.health.read"

	PermRbacRoleRead       = "rbac.role.read"
	PermRbacRoleCreate     = "rbac.role.create"
	PermRbacRoleUpdate     = "rbac.role.update"
	PermRbacRoleDelete     = "rbac.role.delete"
	PermRbacPermissionRead = "rbac.permission.read"
	PermRbacUserRoleAssign = "rbac.user_role.assign"
	PermRbacUserRoleRevoke = "rbac.user_role.revoke"

	PermUserReadAny   = "user.read.any"
	PermUserReadOwn   = "user.read.own"
	PermUserCreate    = "user.create"
	PermUserUpdateAny = "user.update.any"
	PermUserUpdateOwn = "user.update.own"
	PermUserDelete    = "user.delete"

	PermSessionReadAny   = "session.read.any"
	PermSessionRevokeAny = "session.revoke.any"
	PermSessionReadOwn   = "session.read.own"
	PermSessionRevokeOwn = "session.revoke.own"

	PermAuditRead = "audit.read"

	PermCategoryRead    = "category.read"
	PermCategoryCreate  = "category.create"
	PermCategoryUpdate  = "category.update"
	PermCategoryDelete  = "category.delete"
	PermCategoryReorder = "category.reorder"

	PermProductRead    = "product.read"
	PermProductCreate  = "product.create"
	PermProductUpdate  = "product.update"
	PermProductDelete  = "product.delete"
	PermProductPublish = "product.publish"

	PermVariantRead   = "variant.read"
	PermVariantCreate = "variant.create"
	PermVariantUpdate = "variant.update"
	PermVariantDelete = "variant.delete"

	PermMediaRead   = "media.read"
	PermMediaUpload = "media.upload"
	PermMediaDelete = "media.delete"

	PermOptionRead   = "option.read"
	PermOptionCreate = "option.create"
	PermOptionUpdate = "option.update"
	PermOptionDelete = "option.delete"

	PermWarehouseRead   = "warehouse.read"
	PermWarehouseCreate = "warehouse.create"
	PermWarehouseUpdate = "warehouse.update"
	PermWarehouseDelete = "warehouse.delete"

	PermInventoryRead    = "inventory.read"
	PermInventoryAdjust  = "inventory.adjust"
	PermInventoryReserve = "inventory.reserve"

	PermStockMoveRead   = "stock_move.read"
	PermStockMoveCreate = "stock_move.create"
	PermStockMoveRevert = "stock_move.revert"

	PermCartRead   = "cart.read"
	PermCartUpdate = "cart.update"
	PermCartDelete = "cart.delete"

	PermWishlistReadAny   = "wishlist.read.any"
	PermWishlistReadOwn   = "wishlist.read.own"
	PermWishlistUpdateAny = "wishlist.update.any"
	PermWishlistUpdateOwn = "wishlist.update.own"

	PermCouponRead           = "coupon.read"
	PermCouponCreate         = "coupon.create"
	PermCouponUpdate         = "coupon.update"
	PermCouponDelete         = "coupon.delete"
	PermCouponPublish        = "coupon.publish"
	PermCouponRedemptionRead = "coupon_redemption.read"

	PermOrderReadAny = "order.read.any"
	PermOrderReadOwn = "order.read.own"
	PermOrderCreate  = "order.create"
	PermOrderUpdate  = "order.update"
	PermOrderCancel  = "order.cancel"
	PermOrderManage  = "order.manage"

	PermPaymentRead          = "payment.read"
	PermPaymentCapture       = "payment.capture"
	PermPaymentRefundPartial = "payment.refund.partial"
	PermPaymentRefundFull    = "payment.refund.full"
	PermPaymentCancel        = "payment.cancel"

	PermShipmentRead   = "shipment.read"
	PermShipmentCreate = "shipment.create"
	PermShipmentUpdate = "shipment.update"
	PermShipmentCancel = "shipment.cancel"

	PermReviewRead    = "review.read"
	PermReviewCreate  = "review.create"
	PermReviewApprove = "review.approve"
	PermReviewReject  = "review.reject"
	PermReviewDelete  = "review.delete"

	PermNotificationRead            = "notification.read"
	PermNotificationCreate          = "notification.create"
	PermNotificationPublish         = "notification.publish"
	PermNotificationCancel          = "notification.cancel"
	PermNotificationTargetRole      = "notification.target.role"
	PermNotificationTargetBroadcast = "notification.target.broadcast"
)

// AllPermissions is the full permission catalog. Order is stable so resolved
// permission lists are reproducible across processes.
var AllPermissions = []string{
	PermSystemHealthRead,
	PermRbacRoleRead, PermRbacRoleCreate, PermRbacRoleUpdate, PermRbacRoleDelete,
	PermRbacPermissionRead,
	PermRbacUserRoleAssign, PermRbacUserRoleRevoke,
	PermUserReadAny, PermUserReadOwn, PermUserCreate, PermUserUpdateAny, PermUserUpdateOwn, PermUserDelete,
	PermSessionReadAny, PermSessionRevokeAny, PermSessionReadOwn, PermSessionRevokeOwn,
	PermAuditRead,
	PermCategoryRead, PermCategoryCreate, PermCategoryUpdate, PermCategoryDelete, PermCategoryReorder,
	PermProductRead, PermProductCreate, PermProductUpdate, PermProductDelete, PermProductPublish,
	PermVariantRead, PermVariantCreate, PermVariantUpdate, PermVariantDelete,
	PermMediaRead, PermMediaUpload, PermMediaDelete,
	PermOptionRead, PermOptionCreate, PermOptionUpdate, PermOptionDelete,
	PermWarehouseRead, PermWarehouseCreate, PermWarehouseUpdate, PermWarehouseDelete,
	PermInventoryRead, PermInventoryAdjust, PermInventoryReserve,
	PermStockMoveRead, PermStockMoveCreate, PermStockMoveRevert,
	PermCartRead, PermCartUpdate, PermCartDelete,
	PermWishlistReadAny, PermWishlistReadOwn, PermWishlistUpdateAny, PermWishlistUpdateOwn,
	PermCouponRead, PermCouponCreate, PermCouponUpdate, PermCouponDelete, PermCouponPublish,
	PermCouponRedemptionRead,
	PermOrderReadAny, PermOrderReadOwn, PermOrderCreate, PermOrderUpdate, PermOrderCancel, PermOrderManage,
	PermPaymentRead, PermPaymentCapture, PermPaymentRefundPartial, PermPaymentRefundFull, PermPaymentCancel,
	PermShipmentRead, PermShipmentCreate, PermShipmentUpdate, PermShipmentCancel,
	PermReviewRead, PermReviewCreate, PermReviewApprove, PermReviewReject, PermReviewDelete,
	PermNotificationRead, PermNotificationCreate, PermNotificationPublish, PermNotificationCancel,
	PermNotificationTargetRole, PermNotificationTargetBroadcast,
}

// Role codes as seeded at deployment.
const (
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
	RoleGuest    = "guest"
)

// RolePatterns maps each role to its permission patterns: exact codes,
// "prefix.*" wildcards, or the global "*".
var RolePatterns = map[string][]string{
	RoleOwner: {"*"},
	RoleAdmin: {
		PermRbacRoleRead, PermRbacRoleCreate, PermRbacRoleUpdate, PermRbacRoleDelete,
		PermRbacPermissionRead,
		PermRbacUserRoleAssign, PermRbacUserRoleRevoke,
		"user.*", "session.*",
		"category.*", "product.*", "variant.*", "media.*", "option.*",
		"warehouse.*", "inventory.*", "stock_move.*",
		"order.*", "payment.*", "shipment.*",
		"coupon.*", PermCouponRedemptionRead,
		"review.*", "notification.*",
		PermAuditRead,
		PermSystemHealthRead,
	},
	RoleStaff: {
		PermUserReadAny,
		"category.*", "product.*", "variant.*", "media.*", "option.*",
		PermWarehouseRead, PermWarehouseCreate, PermWarehouseUpdate,
		PermInventoryRead, PermInventoryAdjust, PermInventoryReserve,
		PermStockMoveRead, PermStockMoveCreate,
		PermOrderReadAny, PermOrderCreate, PermOrderUpdate, PermOrderCancel,
		PermShipmentRead, PermShipmentCreate, PermShipmentUpdate, PermShipmentCancel,
		PermCouponRead, PermCouponCreate, PermCouponUpdate,
		PermReviewRead, PermReviewApprove, PermReviewReject,
		PermNotificationRead, PermNotificationCreate,
		PermPaymentRead,
	},
	RoleCustomer: {
		PermUserReadOwn, PermUserUpdateOwn,
		PermSessionReadOwn, PermSessionRevokeOwn,
		PermCartRead, PermCartUpdate,
		PermWishlistReadOwn, PermWishlistUpdateOwn,
		PermOrderReadOwn, PermOrderCreate, PermOrderCancel,
		PermReviewCreate, PermReviewRead,
		PermNotificationRead,
	},
	RoleGuest: {PermProductRead, PermCategoryRead, PermReviewRead},
}
