// Package uclass names the engine's built-in class ids.
package uclass

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	Object          = int32(0)
	GameObject      = int32(1)
	Component       = int32(2)
	Transform       = int32(4)
	Material        = int32(21)
	Texture2D       = int32(28)
	Mesh            = int32(43)
	Shader          = int32(48)
	TextAsset       = int32(49)
	AnimationClip   = int32(74)
	AudioClip       = int32(83)
	MonoBehaviour   = int32(114)
	MonoScript      = int32(115)
	Font            = int32(128)
	AssetBundle     = int32(142)
	ResourceManager = int32(147)
	Sprite          = int32(213)
)

var NameByID = map[int32]string{
	0:   "Object",
	1:   "GameObject",
	2:   "Component",
	3:   "LevelGameManager",
	4:   "Transform",
	5:   "TimeManager",
	6:   "GlobalGameManager",
	8:   "Behaviour",
	9:   "GameManager",
	11:  "AudioManager",
	13:  "InputManager",
	18:  "EditorExtension",
	19:  "Physics2DSettings",
	20:  "Camera",
	21:  "Material",
	23:  "MeshRenderer",
	25:  "Renderer",
	27:  "Texture",
	28:  "Texture2D",
	29:  "OcclusionCullingSettings",
	30:  "GraphicsSettings",
	33:  "MeshFilter",
	41:  "OcclusionPortal",
	43:  "Mesh",
	45:  "Skybox",
	47:  "QualitySettings",
	48:  "Shader",
	49:  "TextAsset",
	50:  "Rigidbody2D",
	54:  "Rigidbody",
	55:  "PhysicsManager",
	56:  "Collider",
	57:  "Joint",
	58:  "CircleCollider2D",
	59:  "HingeJoint",
	60:  "PolygonCollider2D",
	61:  "BoxCollider2D",
	62:  "PhysicsMaterial2D",
	64:  "MeshCollider",
	65:  "BoxCollider",
	68:  "EdgeCollider2D",
	72:  "ComputeShader",
	74:  "AnimationClip",
	78:  "TagManager",
	81:  "AudioListener",
	82:  "AudioSource",
	83:  "AudioClip",
	84:  "RenderTexture",
	87:  "MeshParticleEmitter",
	89:  "Cubemap",
	90:  "Avatar",
	91:  "AnimatorController",
	93:  "RuntimeAnimatorController",
	94:  "ScriptMapper",
	95:  "Animator",
	96:  "TrailRenderer",
	98:  "DelayedCallManager",
	102: "TextMesh",
	104: "RenderSettings",
	108: "Light",
	109: "CGProgram",
	110: "BaseAnimationTrack",
	111: "Animation",
	114: "MonoBehaviour",
	115: "MonoScript",
	116: "MonoManager",
	117: "Texture3D",
	119: "Projector",
	120: "LineRenderer",
	121: "Flare",
	123: "LensFlare",
	124: "FlareLayer",
	128: "Font",
	129: "PlayerSettings",
	130: "NamedObject",
	134: "PhysicMaterial",
	135: "SphereCollider",
	136: "CapsuleCollider",
	137: "SkinnedMeshRenderer",
	141: "BuildSettings",
	142: "AssetBundle",
	143: "CharacterController",
	147: "ResourceManager",
	150: "PreloadData",
	152: "MovieTexture",
	156: "TerrainData",
	157: "LightmapSettings",
	180: "AudioReverbZone",
	183: "Cloth",
	184: "SkinnedCloth",
	187: "Tree",
	192: "OffMeshLink",
	193: "OcclusionArea",
	195: "NavMeshAgent",
	196: "NavMeshSettings",
	198: "ParticleSystem",
	199: "ParticleSystemRenderer",
	200: "ShaderVariantCollection",
	205: "LODGroup",
	206: "BlendTree",
	207: "Motion",
	212: "SpriteRenderer",
	213: "Sprite",
	218: "Terrain",
	220: "LightProbeGroup",
	221: "AnimatorOverrideController",
	222: "CanvasRenderer",
	223: "Canvas",
	224: "RectTransform",
	225: "CanvasGroup",
	226: "BillboardAsset",
	228: "SpringJoint2D",
	238: "NavMeshData",
	240: "AudioMixer",
	241: "AudioMixerController",
	243: "AudioMixerGroupController",
	258: "LightProbes",
	271: "SampleClip",
	272: "AudioMixerSnapshot",
	273: "AudioMixerGroup",
	290: "AssetBundleManifest",
	319: "AvatarMask",
	320: "PlayableDirector",
	328: "VideoPlayer",
	329: "VideoClip",
	363: "OcclusionCullingData",

	687078895: "SpriteAtlas",
}

var IDByName = lo.Invert(NameByID)

// Name returns the class name, or the decimal id for classes not listed.
// Negative ids are script types of old formats.
func Name(classID int32) string {
	if name, ok := NameByID[classID]; ok {
		return name
	}
	if classID < 0 {
		return fmt.Sprintf("Script(%d)", classID)
	}
	return strconv.Itoa(int(classID))
}

// Parse accepts a class name or a decimal id.
func Parse(value string) (int32, error) {
	if id, ok := IDByName[value]; ok {
		return id, nil
	}
	id, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return 0, errors.Errorf(`uclass.Parse error: unknown class "%s"`, value)
	}
	return int32(id), nil
}
